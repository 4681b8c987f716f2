package services

import (
	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/models"
)

// requireAction gates an action on a project for a user. Users with no
// access at all get ErrNotFound rather than ErrPermissionDenied so that
// project existence is not leaked outside its membership.
func requireAction(resolver *authz.Resolver, project *models.Project, userID uint, action authz.Action) error {
	role, err := resolver.Resolve(project, userID)
	if err != nil {
		return err
	}
	if authz.Can(role, action) {
		return nil
	}
	if role == authz.RoleNone {
		return ErrNotFound
	}
	return ErrPermissionDenied
}
