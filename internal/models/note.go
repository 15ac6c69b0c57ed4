package models

import "time"

// Note is a project-scoped document. Creation and mutation are ADMIN-gated,
// reads require membership only.
type Note struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ProjectID     uint      `gorm:"not null;index" json:"project_id"`
	CreatedBy     uint      `json:"created_by"`
	Creator       *User     `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	LastUpdatedBy uint      `json:"last_updated_by"`
	IsArchived    bool      `gorm:"default:false;index" json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Note) TableName() string { return "notes" }
