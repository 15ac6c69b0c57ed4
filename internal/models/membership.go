package models

import "time"

// Membership binds a user to a project with a role. The unique index on
// (project_id, user_id) guarantees at most one membership per pair even when
// two add-member requests race past the application-level check.
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      Role      `gorm:"size:50;default:MEMBER" json:"role"`
	AddedBy   uint      `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
