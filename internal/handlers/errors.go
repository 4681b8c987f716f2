package handlers

import (
	"errors"

	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/services"
	"github.com/devtrackhq/devtrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// writeServiceError maps domain errors to HTTP responses. Services return
// error kinds; only this layer knows status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrExpired):
		response.Gone(c, err.Error())
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrDuplicateCollaborator),
		errors.Is(err, services.ErrAlreadyCollaborator),
		errors.Is(err, services.ErrOwnerConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidRecipient),
		errors.Is(err, authz.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}
