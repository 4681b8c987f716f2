package services

import (
	"errors"

	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	resolver *authz.Resolver
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, resolver: authz.NewResolver(db)}
}

type CreateProjectRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	RepoURL          string `json:"repo_url"`
	DomainName       string `json:"domain_name"`
	DeploymentStatus string `json:"deployment_status" binding:"omitempty,oneof=pending in_progress deployed failed maintenance"`
}

type UpdateProjectRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	RepoURL          string `json:"repo_url"`
	DomainName       string `json:"domain_name"`
	DeploymentStatus string `json:"deployment_status" binding:"omitempty,oneof=pending in_progress deployed failed maintenance"`
	IsActive         *bool  `json:"is_active"`
}

// ProjectSummary is a project plus the caller's effective role on it.
type ProjectSummary struct {
	models.Project
	EffectiveRole authz.Role `json:"effective_role"`
}

// List returns the active projects visible to a user: the ones they own
// and the ones they collaborate on, newest first.
func (s *ProjectService) List(userID uint) ([]ProjectSummary, error) {
	var owned []models.Project
	if err := s.db.Where("owner_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&owned).Error; err != nil {
		return nil, err
	}

	var collabs []models.Collaborator
	if err := s.db.Where("user_id = ?", userID).
		Preload("Project").
		Order("added_at DESC").
		Find(&collabs).Error; err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummary, 0, len(owned)+len(collabs))
	for _, p := range owned {
		summaries = append(summaries, ProjectSummary{Project: p, EffectiveRole: authz.RoleOwner})
	}
	for _, c := range collabs {
		if c.Project == nil || !c.Project.IsActive {
			continue
		}
		summaries = append(summaries, ProjectSummary{Project: *c.Project, EffectiveRole: authz.Role(c.Role)})
	}
	return summaries, nil
}

// Get returns a project if the user may view it.
func (s *ProjectService) Get(projectID, userID uint) (*ProjectSummary, error) {
	var project models.Project
	if err := s.db.Preload("Owner").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireAction(s.resolver, &project, userID, authz.ActionView); err != nil {
		return nil, err
	}

	role, err := s.resolver.Resolve(&project, userID)
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{Project: project, EffectiveRole: role}, nil
}

// Create persists a new project owned by the caller.
func (s *ProjectService) Create(req *CreateProjectRequest, ownerID uint) (*models.Project, error) {
	status := req.DeploymentStatus
	if status == "" {
		status = models.DeploymentPending
	}

	project := models.Project{
		Name:             req.Name,
		Description:      req.Description,
		RepoURL:          req.RepoURL,
		DomainName:       req.DomainName,
		DeploymentStatus: status,
		OwnerID:          ownerID,
		IsActive:         true,
	}
	if err := s.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.New("a project with this name already exists")
		}
		return nil, err
	}
	return &project, nil
}

// Update edits project fields. Permission: edit (owner, admin or
// contributor). The owner is immutable and not updatable here.
func (s *ProjectService) Update(projectID, userID uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireAction(s.resolver, &project, userID, authz.ActionEdit); err != nil {
		return nil, err
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.RepoURL != "" {
		project.RepoURL = req.RepoURL
	}
	if req.DomainName != "" {
		project.DomainName = req.DomainName
	}
	if req.DeploymentStatus != "" {
		project.DeploymentStatus = req.DeploymentStatus
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.db.Save(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.New("a project with this name already exists")
		}
		return nil, err
	}
	return &project, nil
}

// Delete removes a project and cascades to its collaborators and
// invitations in one transaction. Permission: delete (owner or admin).
func (s *ProjectService) Delete(projectID, userID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := requireAction(s.resolver, &project, userID, authz.ActionDelete); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).
			Delete(&models.Collaborator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).
			Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}
