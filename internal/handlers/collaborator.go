package handlers

import (
	"github.com/devtrackhq/devtrack/backend/internal/middleware"
	"github.com/devtrackhq/devtrack/backend/internal/services"
	"github.com/devtrackhq/devtrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CollaboratorHandler struct {
	collaboratorService *services.CollaboratorService
}

func NewCollaboratorHandler(db *gorm.DB) *CollaboratorHandler {
	return &CollaboratorHandler{
		collaboratorService: services.NewCollaboratorService(db),
	}
}

// List returns the collaborators of a project
// GET /api/projects/:id/collaborators
func (h *CollaboratorHandler) List(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.collaboratorService.List(projectID, middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, list)
}

// Add grants a user collaborator access directly
// POST /api/projects/:id/collaborators
func (h *CollaboratorHandler) Add(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.collaboratorService.Add(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, collab)
}

// UpdateRole changes a collaborator's role
// PUT /api/projects/:id/collaborators/:memberID
func (h *CollaboratorHandler) UpdateRole(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberID")
	if !ok {
		return
	}

	var req services.UpdateCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	collab, err := h.collaboratorService.UpdateRole(projectID, memberID, middleware.GetUserID(c), req.Role)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, collab)
}

// Remove revokes a collaborator's access
// DELETE /api/projects/:id/collaborators/:memberID
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "memberID")
	if !ok {
		return
	}

	if err := h.collaboratorService.Remove(projectID, memberID, middleware.GetUserID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "collaborator removed"})
}

// MyCollaborations returns the caller's collaborator rows
// GET /api/my/collaborations
func (h *CollaboratorHandler) MyCollaborations(c *gin.Context) {
	items, err := h.collaboratorService.MyCollaborations(middleware.GetUserID(c))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"items": items})
}
