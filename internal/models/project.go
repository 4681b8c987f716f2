package models

import (
	"time"

	"gorm.io/gorm"
)

// Deployment status values for a project.
const (
	DeploymentPending     = "pending"
	DeploymentInProgress  = "in_progress"
	DeploymentDeployed    = "deployed"
	DeploymentFailed      = "failed"
	DeploymentMaintenance = "maintenance"
)

// Project represents a tracked project. The owner is set at creation and
// never changes; the owner holds full access implicitly and must never
// appear in the collaborators table.
type Project struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"uniqueIndex:idx_owner_project_name;size:100;not null" json:"name"`
	Description      string         `gorm:"type:text" json:"description"`
	RepoURL          string         `gorm:"size:500" json:"repo_url"`
	DomainName       string         `gorm:"size:253" json:"domain_name"`
	DeploymentStatus string         `gorm:"size:20;default:pending" json:"deployment_status"`
	OwnerID          uint           `gorm:"uniqueIndex:idx_owner_project_name;index;not null" json:"owner_id"`
	Owner            *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// DeploymentURL returns the public URL derived from the domain name.
func (p *Project) DeploymentURL() string {
	if p.DomainName == "" {
		return ""
	}
	return "https://" + p.DomainName
}
