package models

import "time"

// Collaborator grants a non-owner user persistent access to a project with
// an explicit role. Rows are hard-deleted on removal; the (project, user)
// pair is unique at the database level so concurrent accepts cannot
// produce duplicates.
type Collaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:20;default:viewer;not null" json:"role"` // viewer, contributor, admin
	AddedAt   time.Time `gorm:"autoCreateTime;index" json:"added_at"`
	AddedByID *uint     `json:"added_by_id"` // nil means system-added
	AddedBy   *User     `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
}

func (Collaborator) TableName() string { return "collaborators" }
