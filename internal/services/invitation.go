package services

import (
	"errors"
	"strings"
	"time"

	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationService drives the invitation lifecycle: pending → accepted,
// declined, expired or cancelled, each terminal. Uniqueness is re-checked
// in application code for friendly errors, but the database constraints
// are what actually close the race windows.
type InvitationService struct {
	db       *gorm.DB
	resolver *authz.Resolver
	queue    TaskQueue
}

func NewInvitationService(db *gorm.DB, queue TaskQueue) *InvitationService {
	return &InvitationService{
		db:       db,
		resolver: authz.NewResolver(db),
		queue:    queue,
	}
}

type CreateInvitationRequest struct {
	InviteeID *uint      `json:"invitee_id"`
	Email     string     `json:"email" binding:"omitempty,email"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// InvitationResult carries a created or resent invitation plus a soft
// warning when the notification email could not be dispatched. The
// invitation itself is committed either way.
type InvitationResult struct {
	Invitation    *models.Invitation `json:"invitation"`
	NotifyWarning string             `json:"-"`
}

type InvitationListResponse struct {
	Items         []models.Invitation `json:"items"`
	PendingCount  int64               `json:"pending_count"`
	AcceptedCount int64               `json:"accepted_count"`
	CanManage     bool                `json:"can_manage"`
}

// Create validates and persists a new pending invitation, then triggers
// the notification email. Permission: manage_members on the project.
func (s *InvitationService) Create(projectID, inviterID uint, req *CreateInvitationRequest) (*InvitationResult, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := requireAction(s.resolver, &project, inviterID, authz.ActionManageMembers); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if (req.InviteeID == nil) == (email == "") {
		return nil, ErrInvalidRecipient
	}

	inv := models.Invitation{
		ProjectID: project.ID,
		InviterID: inviterID,
		Token:     uuid.NewString(),
		Status:    models.InvitationPending,
	}

	if req.InviteeID != nil {
		var invitee models.User
		if err := s.db.First(&invitee, *req.InviteeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := s.checkTarget(&project, invitee.ID); err != nil {
			return nil, err
		}
		inv.InviteeID = &invitee.ID
	} else {
		// An email invitation may still address a registered user; the
		// already-a-collaborator rule applies to them all the same. Stored
		// addresses keep their original case, so match case-insensitively.
		var existing models.User
		err := s.db.Where("LOWER(email) = ?", email).First(&existing).Error
		if err == nil {
			if err := s.checkTarget(&project, existing.ID); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		inv.Email = email
	}

	if err := s.checkDuplicatePending(project.ID, inv.InviteeID, inv.Email); err != nil {
		return nil, err
	}

	if req.ExpiresAt != nil {
		inv.ExpiresAt = *req.ExpiresAt
	} else {
		inv.ExpiresAt = time.Now().Add(models.InvitationTTL)
	}

	if err := s.db.Create(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}

	return &InvitationResult{
		Invitation:    &inv,
		NotifyWarning: s.notify(inv.ID),
	}, nil
}

// checkTarget rejects invitations addressed to the project owner or to an
// existing collaborator.
func (s *InvitationService) checkTarget(project *models.Project, userID uint) error {
	if userID == project.OwnerID {
		return ErrOwnerConflict
	}
	var count int64
	if err := s.db.Model(&models.Collaborator{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyCollaborator
	}
	return nil
}

func (s *InvitationService) checkDuplicatePending(projectID uint, inviteeID *uint, email string) error {
	query := s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND status = ?", projectID, models.InvitationPending)
	if inviteeID != nil {
		query = query.Where("invitee_id = ?", *inviteeID)
	} else {
		query = query.Where("email = ?", email)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicatePending
	}
	return nil
}

// Accept redeems an invitation token for the acting user. The status
// transition and the collaborator creation happen in one transaction:
// either both commit or neither does. A concurrent duplicate accept loses
// on the guarded update (ErrInvalidState) or on the unique collaborator
// constraint (ErrDuplicateCollaborator).
func (s *InvitationService) Accept(token string, actingUserID uint) (*models.Invitation, error) {
	if actingUserID == 0 {
		return nil, ErrPermissionDenied
	}

	var inv models.Invitation
	if err := s.db.Preload("Project").Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if inv.Status != models.InvitationPending {
		return nil, ErrInvalidState
	}

	if inv.IsExpired() {
		// Lazy expiry: record the observation before reporting it. The
		// status guard keeps a concurrent transition from being clobbered.
		if err := s.db.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
			Update("status", models.InvitationExpired).Error; err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	// A token addressed to a known user is only redeemable by that user.
	if inv.InviteeID != nil && *inv.InviteeID != actingUserID {
		return nil, ErrPermissionDenied
	}
	if inv.Project != nil && inv.Project.OwnerID == actingUserID {
		return nil, ErrOwnerConflict
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
			Updates(map[string]interface{}{
				"status":      models.InvitationAccepted,
				"accepted_at": now,
				"invitee_id":  actingUserID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		collab := models.Collaborator{
			ProjectID: inv.ProjectID,
			UserID:    actingUserID,
			Role:      string(authz.RoleViewer), // acceptance never inherits a custom role
			AddedByID: &inv.InviterID,
		}
		if err := tx.Create(&collab).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateCollaborator
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Project").Preload("Invitee").First(&inv, inv.ID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Decline marks a pending invitation declined. No collaborator side
// effect.
func (s *InvitationService) Decline(token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Update("status", models.InvitationDeclined)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	inv.Status = models.InvitationDeclined
	return &inv, nil
}

// Cancel withdraws a pending invitation. Permitted for the project owner,
// an admin collaborator, or the original inviter. Cancellation is its own
// terminal state, distinct from expiry.
func (s *InvitationService) Cancel(invitationID, actingUserID uint) (*models.Invitation, error) {
	inv, err := s.loadForAdmin(invitationID, actingUserID)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Update("status", models.InvitationCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	inv.Status = models.InvitationCancelled
	return inv, nil
}

// Resend extends a pending invitation by the default TTL and re-triggers
// the notification email. An invitation past its deadline cannot be
// resent; observing that flips it to expired.
func (s *InvitationService) Resend(invitationID, actingUserID uint) (*InvitationResult, error) {
	inv, err := s.loadForAdmin(invitationID, actingUserID)
	if err != nil {
		return nil, err
	}

	if inv.Status != models.InvitationPending {
		return nil, ErrInvalidState
	}
	if inv.IsExpired() {
		if err := s.db.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
			Update("status", models.InvitationExpired).Error; err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	newExpiry := time.Now().Add(models.InvitationTTL)
	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Update("expires_at", newExpiry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	inv.ExpiresAt = newExpiry
	return &InvitationResult{
		Invitation:    inv,
		NotifyWarning: s.notify(inv.ID),
	}, nil
}

// loadForAdmin fetches an invitation and verifies the acting user may
// administer it (owner, admin collaborator, or the inviter).
func (s *InvitationService) loadForAdmin(invitationID, actingUserID uint) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.Preload("Project").First(&inv, invitationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if inv.InviterID == actingUserID {
		return &inv, nil
	}

	role, err := s.resolver.Resolve(inv.Project, actingUserID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(role, authz.ActionManageMembers) {
		if role == authz.RoleNone {
			return nil, ErrNotFound
		}
		return nil, ErrPermissionDenied
	}
	return &inv, nil
}

// ListByProject returns all invitations of a project, newest first, with
// pending/accepted counts. Any collaborator may view the list; the
// CanManage flag tells the caller whether mutating actions are available.
func (s *InvitationService) ListByProject(projectID, viewerID uint) (*InvitationListResponse, error) {
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

	var items []models.Invitation
	if err := s.db.Where("project_id = ?", projectID).
		Preload("Inviter").Preload("Invitee").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	var pending, accepted int64
	if err := s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND status = ?", projectID, models.InvitationPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND status = ?", projectID, models.InvitationAccepted).
		Count(&accepted).Error; err != nil {
		return nil, err
	}

	role, err := s.resolver.Resolve(&project, viewerID)
	if err != nil {
		return nil, err
	}

	return &InvitationListResponse{
		Items:         items,
		PendingCount:  pending,
		AcceptedCount: accepted,
		CanManage:     authz.Can(role, authz.ActionManageMembers),
	}, nil
}

// MyInvitations returns the pending invitations addressed to a user,
// either directly or via the email on their account.
func (s *InvitationService) MyInvitations(userID uint) ([]models.Invitation, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Invitation emails are lowercased on create; the account email is not.
	var items []models.Invitation
	if err := s.db.Where("status = ? AND (invitee_id = ? OR email = ?)",
		models.InvitationPending, userID, strings.ToLower(user.Email)).
		Preload("Project").Preload("Inviter").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// notify enqueues the invitation email and returns a warning message on
// failure. Delivery problems never fail the triggering operation.
func (s *InvitationService) notify(invitationID uint) string {
	if s.queue == nil {
		return ""
	}
	if err := s.queue.Enqueue(&InvitationEmailTask{InvitationID: invitationID}); err != nil {
		return "invitation saved but the notification email could not be sent: " + err.Error()
	}
	return ""
}
