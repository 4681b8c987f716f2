package services

import "errors"

// Domain error kinds. Handlers translate these to HTTP responses; the
// services themselves never write status codes. All of them abort the
// operation with no partial state — notification failures are not errors,
// they surface as warnings on the result.
var (
	// ErrPermissionDenied marks an actor lacking the required role.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound marks a missing or out-of-scope project, invitation or
	// collaborator.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation on an invitation that is not in
	// the required state, e.g. accepting a declined invitation.
	ErrInvalidState = errors.New("invitation is not pending")
	// ErrExpired marks an invitation whose deadline has passed. Detecting
	// it flips the stored status to expired as a side effect.
	ErrExpired = errors.New("invitation has expired")
	// ErrInvalidRecipient marks an invitation with zero or two recipient
	// identifiers.
	ErrInvalidRecipient = errors.New("exactly one of invitee user or email must be provided")
	// ErrAlreadyCollaborator marks an invitation targeting an existing
	// collaborator.
	ErrAlreadyCollaborator = errors.New("user is already a collaborator on this project")
	// ErrDuplicatePending marks a second pending invitation for the same
	// recipient on the same project.
	ErrDuplicatePending = errors.New("a pending invitation already exists for this recipient")
	// ErrDuplicateCollaborator marks a second collaborator row for the
	// same (project, user) pair.
	ErrDuplicateCollaborator = errors.New("collaborator already exists for this project")
	// ErrOwnerConflict marks an attempt to treat the project owner as an
	// ordinary collaborator.
	ErrOwnerConflict = errors.New("project owner cannot be a collaborator")
)
