package services

import (
	"errors"

	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/gorm"
)

// CollaboratorService manages the collaborator rows of a project. The
// owner never has a row here; ownership is implicit on the project.
type CollaboratorService struct {
	db       *gorm.DB
	resolver *authz.Resolver
}

func NewCollaboratorService(db *gorm.DB) *CollaboratorService {
	return &CollaboratorService{db: db, resolver: authz.NewResolver(db)}
}

type AddCollaboratorRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

type UpdateCollaboratorRequest struct {
	Role string `json:"role" binding:"required"`
}

type CollaboratorListResponse struct {
	Items     []models.Collaborator `json:"items"`
	UserRole  authz.Role            `json:"user_role"`
	CanManage bool                  `json:"can_manage"`
}

// Add grants a user direct collaborator access, bypassing the invitation
// flow. Permission: manage_members.
func (s *CollaboratorService) Add(projectID, actingUserID uint, req *AddCollaboratorRequest) (*models.Collaborator, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireAction(s.resolver, &project, actingUserID, authz.ActionManageMembers); err != nil {
		return nil, err
	}

	role, err := authz.ParseCollaboratorRole(req.Role)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user.ID == project.OwnerID {
		return nil, ErrOwnerConflict
	}

	var count int64
	if err := s.db.Model(&models.Collaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, user.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateCollaborator
	}

	collab := models.Collaborator{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      string(role),
		AddedByID: &actingUserID,
	}
	if err := s.db.Create(&collab).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCollaborator
		}
		return nil, err
	}

	s.db.Preload("User").First(&collab, collab.ID)
	return &collab, nil
}

// UpdateRole changes a collaborator's role. The new role must be one of
// the three collaborator roles; anything else — including stale values
// like "editor" — is rejected. Permission: manage_members.
func (s *CollaboratorService) UpdateRole(projectID, collaboratorID, actingUserID uint, newRole string) (*models.Collaborator, error) {
	collab, project, err := s.loadForManage(projectID, collaboratorID, actingUserID)
	if err != nil {
		return nil, err
	}

	role, err := authz.ParseCollaboratorRole(newRole)
	if err != nil {
		return nil, err
	}

	if collab.UserID == project.OwnerID {
		// Defensive only; such a row must never exist.
		return nil, ErrOwnerConflict
	}

	if err := s.db.Model(collab).Update("role", string(role)).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").First(collab, collab.ID)
	return collab, nil
}

// Remove hard-deletes a collaborator row. Permission: manage_members.
func (s *CollaboratorService) Remove(projectID, collaboratorID, actingUserID uint) error {
	collab, project, err := s.loadForManage(projectID, collaboratorID, actingUserID)
	if err != nil {
		return err
	}

	if collab.UserID == project.OwnerID {
		return ErrOwnerConflict
	}

	return s.db.Delete(collab).Error
}

// List returns the collaborators of a project, most recently added first.
// Any collaborator (and the owner) may view the list.
func (s *CollaboratorService) List(projectID, viewerID uint) (*CollaboratorListResponse, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireAction(s.resolver, &project, viewerID, authz.ActionViewMembers); err != nil {
		return nil, err
	}

	var items []models.Collaborator
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").Preload("AddedBy").
		Order("added_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	role, err := s.resolver.Resolve(&project, viewerID)
	if err != nil {
		return nil, err
	}

	return &CollaboratorListResponse{
		Items:     items,
		UserRole:  role,
		CanManage: authz.Can(role, authz.ActionManageMembers),
	}, nil
}

// MyCollaborations returns the projects a user collaborates on, newest
// first.
func (s *CollaboratorService) MyCollaborations(userID uint) ([]models.Collaborator, error) {
	var items []models.Collaborator
	if err := s.db.Where("user_id = ?", userID).
		Preload("Project").Preload("AddedBy").
		Order("added_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CollaboratorService) loadForManage(projectID, collaboratorID, actingUserID uint) (*models.Collaborator, *models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if err := requireAction(s.resolver, &project, actingUserID, authz.ActionManageMembers); err != nil {
		return nil, nil, err
	}

	var collab models.Collaborator
	if err := s.db.Where("id = ? AND project_id = ?", collaboratorID, projectID).
		First(&collab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	return &collab, &project, nil
}
