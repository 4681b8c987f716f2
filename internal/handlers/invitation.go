package handlers

import (
	"github.com/devtrackhq/devtrack/backend/internal/middleware"
	"github.com/devtrackhq/devtrack/backend/internal/services"
	"github.com/devtrackhq/devtrack/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(db *gorm.DB, queue services.TaskQueue) *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(db, queue),
	}
}

// ListByProject returns a project's invitations with counts
// GET /api/projects/:id/invitations
func (h *InvitationHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.invitationService.ListByProject(projectID, middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, list)
}

// Create sends a new invitation
// POST /api/projects/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.invitationService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if result.NotifyWarning != "" {
		response.CreatedWithWarning(c, result.Invitation, result.NotifyWarning)
		return
	}
	response.Created(c, result.Invitation)
}

// Resend extends a pending invitation and re-sends the email
// POST /api/invitations/:id/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.invitationService.Resend(id, middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if result.NotifyWarning != "" {
		response.SuccessWithWarning(c, result.Invitation, result.NotifyWarning)
		return
	}
	response.Success(c, result.Invitation)
}

// Cancel withdraws a pending invitation
// POST /api/invitations/:id/cancel
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.invitationService.Cancel(id, middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, inv)
}

// Accept redeems an invitation token for the current user
// POST /api/invitations/accept/:token
func (h *InvitationHandler) Accept(c *gin.Context) {
	inv, err := h.invitationService.Accept(c.Param("token"), middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, inv)
}

// Decline rejects an invitation token
// POST /api/invitations/decline/:token
func (h *InvitationHandler) Decline(c *gin.Context) {
	inv, err := h.invitationService.Decline(c.Param("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, inv)
}

// MyInvitations returns the caller's pending invitations
// GET /api/my/invitations
func (h *InvitationHandler) MyInvitations(c *gin.Context) {
	items, err := h.invitationService.MyInvitations(middleware.GetUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
