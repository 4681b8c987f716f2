package authz

import (
	"errors"

	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/gorm"
)

// Resolver computes effective roles from ownership and collaborator
// records. It has no cache and no side effects; each call reads the
// current store state.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the effective role of a user on a project. A zero
// userID marks an unauthenticated caller and always resolves to none.
func (r *Resolver) Resolve(project *models.Project, userID uint) (Role, error) {
	if project == nil || userID == 0 {
		return RoleNone, nil
	}
	if project.OwnerID == userID {
		return RoleOwner, nil
	}

	var collab models.Collaborator
	err := r.db.Where("project_id = ? AND user_id = ?", project.ID, userID).
		First(&collab).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RoleNone, nil
	}
	if err != nil {
		return RoleNone, err
	}

	role := Role(collab.Role)
	if !IsCollaboratorRole(role) {
		// A stored role outside the enumerated set grants nothing.
		return RoleNone, nil
	}
	return role, nil
}

// ResolveID is a convenience for callers that only hold a project ID.
func (r *Resolver) ResolveID(projectID, userID uint) (Role, error) {
	var project models.Project
	if err := r.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	return r.Resolve(&project, userID)
}
