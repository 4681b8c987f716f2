// Package authz resolves a user's effective role on a project and gates
// every project action through a single permission table. Call sites must
// never compare role strings themselves.
package authz

import (
	"errors"
	"fmt"
)

// ErrInvalidRole reports a role string outside the collaborator role set.
var ErrInvalidRole = errors.New("invalid collaborator role")

// Role is the effective access level of a user on a project.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
	RoleNone        Role = "none"
)

// collaboratorRoles are the roles a collaborator row may carry. Owner is
// implicit (never stored) and none is the absence of access.
var collaboratorRoles = map[Role]bool{
	RoleAdmin:       true,
	RoleContributor: true,
	RoleViewer:      true,
}

// ParseCollaboratorRole validates a role string supplied by a caller.
// Anything outside the three collaborator roles is rejected, including
// legacy values like "editor" that were never part of the role set.
func ParseCollaboratorRole(s string) (Role, error) {
	r := Role(s)
	if !collaboratorRoles[r] {
		return "", fmt.Errorf("%w: %q, must be 'viewer', 'contributor', or 'admin'", ErrInvalidRole, s)
	}
	return r, nil
}

// IsCollaboratorRole reports whether r may be stored on a collaborator row.
func IsCollaboratorRole(r Role) bool {
	return collaboratorRoles[r]
}
