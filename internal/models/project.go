package models

import "time"

// Project is the top-level collaboration container. Deletion is archival:
// archived projects drop out of listings but stay reachable by id.
type Project struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:200;not null;index" json:"name"`
	Description string       `gorm:"type:text;not null" json:"description"`
	OwnerID     uint         `gorm:"not null;index" json:"owner_id"`
	Owner       *User        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members     []Membership `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	IsArchived  bool         `gorm:"default:false;index" json:"is_archived"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// IsMember reports whether userID has a membership in the project.
// Members must be loaded.
func (p *Project) IsMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// RoleOf returns the member's role, or false when userID is not a member.
func (p *Project) RoleOf(userID uint) (Role, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// HasRole reports whether userID is a member holding required or higher.
// Non-members never satisfy any role. A role value outside the enum is an
// error rather than a silent false at rank 0.
func (p *Project) HasRole(userID uint, required Role) (bool, error) {
	role, ok := p.RoleOf(userID)
	if !ok {
		return false, nil
	}
	return Satisfies(role, required)
}
