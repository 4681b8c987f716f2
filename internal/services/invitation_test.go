package services

import (
	"errors"
	"testing"
	"time"

	"github.com/devtrackhq/devtrack/backend/internal/authz"
	"github.com/devtrackhq/devtrack/backend/internal/models"
	"gorm.io/gorm"
)

func TestInvitationCreate_ByUserID(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	inv := result.Invitation
	if inv.Status != models.InvitationPending {
		t.Errorf("Status = %q, expected %q", inv.Status, models.InvitationPending)
	}
	if inv.Token == "" {
		t.Error("Token should not be empty")
	}
	if inv.InviteeID == nil || *inv.InviteeID != invitee.ID {
		t.Errorf("InviteeID = %v, expected %d", inv.InviteeID, invitee.ID)
	}
	if result.NotifyWarning != "" {
		t.Errorf("NotifyWarning = %q, expected empty with nil queue", result.NotifyWarning)
	}

	wantExpiry := time.Now().Add(models.InvitationTTL)
	diff := inv.ExpiresAt.Sub(wantExpiry)
	if diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("ExpiresAt = %v, expected about %v", inv.ExpiresAt, wantExpiry)
	}
}

func TestInvitationCreate_RecipientValidation(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)

	_, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{})
	if !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("no recipient: err = %v, expected ErrInvalidRecipient", err)
	}

	_, err = svc.Create(project.ID, owner.ID, &CreateInvitationRequest{
		InviteeID: &invitee.ID,
		Email:     "someone@example.com",
	})
	if !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("both recipients: err = %v, expected ErrInvalidRecipient", err)
	}
}

func TestInvitationCreate_OwnerConflict(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)

	_, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &owner.ID})
	if !errors.Is(err, ErrOwnerConflict) {
		t.Errorf("invite owner by id: err = %v, expected ErrOwnerConflict", err)
	}

	// Email invitations addressed to the owner's account are rejected too.
	_, err = svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: owner.Email})
	if !errors.Is(err, ErrOwnerConflict) {
		t.Errorf("invite owner by email: err = %v, expected ErrOwnerConflict", err)
	}
}

func TestInvitationCreate_AlreadyCollaborator(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, owner.ID, "website")
	addTestCollaborator(t, db, project.ID, member.ID, string(authz.RoleViewer))

	svc := NewInvitationService(db, nil)

	_, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &member.ID})
	if !errors.Is(err, ErrAlreadyCollaborator) {
		t.Errorf("by id: err = %v, expected ErrAlreadyCollaborator", err)
	}

	_, err = svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: member.Email})
	if !errors.Is(err, ErrAlreadyCollaborator) {
		t.Errorf("by email: err = %v, expected ErrAlreadyCollaborator", err)
	}
}

func TestInvitationCreate_MixedCaseEmail(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner.ID, "website")

	// LDAP-synced accounts keep the directory's email casing verbatim.
	member := models.User{
		Username: "member",
		Email:    "Member@Example.com",
		Role:     "user",
		AuthType: "ldap",
		IsActive: true,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	addTestCollaborator(t, db, project.ID, member.ID, string(authz.RoleViewer))

	svc := NewInvitationService(db, nil)

	_, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "Member@Example.com"})
	if !errors.Is(err, ErrAlreadyCollaborator) {
		t.Errorf("exact stored case: err = %v, expected ErrAlreadyCollaborator", err)
	}
	_, err = svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "member@example.com"})
	if !errors.Is(err, ErrAlreadyCollaborator) {
		t.Errorf("lowercased: err = %v, expected ErrAlreadyCollaborator", err)
	}
}

func TestMyInvitations_MixedCaseEmail(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner.ID, "website")

	invitee := models.User{
		Username: "invitee",
		Email:    "Invitee@Example.com",
		Role:     "user",
		AuthType: "ldap",
		IsActive: true,
	}
	if err := db.Create(&invitee).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	svc := NewInvitationService(db, nil)
	if _, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "invitee@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	items, err := svc.MyInvitations(invitee.ID)
	if err != nil {
		t.Fatalf("MyInvitations failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len(items) = %d, expected 1", len(items))
	}
}

func TestInvitationCreate_DuplicatePending(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	if _, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if !errors.Is(err, ErrDuplicatePending) {
		t.Errorf("err = %v, expected ErrDuplicatePending", err)
	}

	if _, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "outside@example.com"}); err != nil {
		t.Fatalf("email Create failed: %v", err)
	}
	_, err = svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "outside@example.com"})
	if !errors.Is(err, ErrDuplicatePending) {
		t.Errorf("email dup: err = %v, expected ErrDuplicatePending", err)
	}
}

func TestInvitationCreate_Permissions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	contributor := createTestUser(t, db, "contributor")
	outsider := createTestUser(t, db, "outsider")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")
	addTestCollaborator(t, db, project.ID, contributor.ID, string(authz.RoleContributor))

	svc := NewInvitationService(db, nil)

	_, err := svc.Create(project.ID, contributor.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("contributor: err = %v, expected ErrPermissionDenied", err)
	}

	// An outsider learns nothing about the project's existence.
	_, err = svc.Create(project.ID, outsider.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("outsider: err = %v, expected ErrNotFound", err)
	}
}

func TestInvitationAccept_EmailInvitation(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "newcomer@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The recipient registers and redeems the token.
	newcomer := createTestUser(t, db, "newcomer")
	accepted, err := svc.Accept(result.Invitation.Token, newcomer.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if accepted.Status != models.InvitationAccepted {
		t.Errorf("Status = %q, expected %q", accepted.Status, models.InvitationAccepted)
	}
	if accepted.InviteeID == nil || *accepted.InviteeID != newcomer.ID {
		t.Errorf("InviteeID = %v, expected %d", accepted.InviteeID, newcomer.ID)
	}
	if accepted.AcceptedAt == nil {
		t.Error("AcceptedAt should be set")
	}

	var collab models.Collaborator
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, newcomer.ID).
		First(&collab).Error; err != nil {
		t.Fatalf("collaborator row not created: %v", err)
	}
	if collab.Role != string(authz.RoleViewer) {
		t.Errorf("collaborator Role = %q, expected %q", collab.Role, authz.RoleViewer)
	}
	if collab.AddedByID == nil || *collab.AddedByID != owner.ID {
		t.Errorf("AddedByID = %v, expected %d", collab.AddedByID, owner.ID)
	}
}

func TestInvitationAccept_Twice(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Accept(result.Invitation.Token, invitee.ID); err != nil {
		t.Fatalf("first Accept failed: %v", err)
	}

	_, err = svc.Accept(result.Invitation.Token, invitee.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Accept: err = %v, expected ErrInvalidState", err)
	}

	var count int64
	db.Model(&models.Collaborator{}).
		Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("collaborator rows = %d, expected 1", count)
	}
}

func TestInvitationAccept_WrongUser(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	other := createTestUser(t, db, "other")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Accept(result.Invitation.Token, other.ID)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, expected ErrPermissionDenied", err)
	}

	var inv models.Invitation
	db.First(&inv, result.Invitation.ID)
	if inv.Status != models.InvitationPending {
		t.Errorf("Status = %q, invitation should stay pending", inv.Status)
	}
}

func TestInvitationAccept_Expired(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	past := time.Now().Add(-time.Hour)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{
		InviteeID: &invitee.ID,
		ExpiresAt: &past,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Accept(result.Invitation.Token, invitee.ID)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, expected ErrExpired", err)
	}

	// Expiry observed at accept time is written back.
	var inv models.Invitation
	db.First(&inv, result.Invitation.ID)
	if inv.Status != models.InvitationExpired {
		t.Errorf("Status = %q, expected %q", inv.Status, models.InvitationExpired)
	}

	var count int64
	db.Model(&models.Collaborator{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Errorf("collaborator rows = %d, expected 0", count)
	}
}

func TestInvitationAccept_OwnerRedeemsEmailToken(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Accept(result.Invitation.Token, owner.ID)
	if !errors.Is(err, ErrOwnerConflict) {
		t.Errorf("err = %v, expected ErrOwnerConflict", err)
	}
}

func TestInvitationAccept_UnknownToken(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user")

	svc := NewInvitationService(db, nil)
	_, err := svc.Accept("no-such-token", user.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
}

func TestInvitationDecline(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	declined, err := svc.Decline(result.Invitation.Token)
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.Status != models.InvitationDeclined {
		t.Errorf("Status = %q, expected %q", declined.Status, models.InvitationDeclined)
	}

	// Declining leaves no membership behind.
	var count int64
	db.Model(&models.Collaborator{}).Where("project_id = ?", project.ID).Count(&count)
	if count != 0 {
		t.Errorf("collaborator rows = %d, expected 0", count)
	}

	_, err = svc.Decline(result.Invitation.Token)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Decline: err = %v, expected ErrInvalidState", err)
	}
}

func TestInvitationCancel(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cancelled, err := svc.Cancel(result.Invitation.ID, owner.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != models.InvitationCancelled {
		t.Errorf("Status = %q, expected %q", cancelled.Status, models.InvitationCancelled)
	}

	_, err = svc.Accept(result.Invitation.Token, invitee.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("accept after cancel: err = %v, expected ErrInvalidState", err)
	}
}

func TestInvitationCancel_AcceptedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Accept(result.Invitation.Token, invitee.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	_, err = svc.Cancel(result.Invitation.ID, owner.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("err = %v, expected ErrInvalidState", err)
	}

	// The accepted membership is untouched by the failed cancel.
	var count int64
	db.Model(&models.Collaborator{}).
		Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("collaborator rows = %d, expected 1", count)
	}
}

func TestInvitationCancel_Permissions(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	admin := createTestUser(t, db, "admin")
	viewer := createTestUser(t, db, "viewer")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")
	addTestCollaborator(t, db, project.ID, admin.ID, string(authz.RoleAdmin))
	addTestCollaborator(t, db, project.ID, viewer.ID, string(authz.RoleViewer))

	svc := NewInvitationService(db, nil)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Cancel(result.Invitation.ID, viewer.ID)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("viewer: err = %v, expected ErrPermissionDenied", err)
	}

	// An admin collaborator may cancel an invitation sent by someone else.
	if _, err := svc.Cancel(result.Invitation.ID, admin.ID); err != nil {
		t.Errorf("admin Cancel failed: %v", err)
	}
}

func TestInvitationResend(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	soon := time.Now().Add(time.Hour)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{
		InviteeID: &invitee.ID,
		ExpiresAt: &soon,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resent, err := svc.Resend(result.Invitation.ID, owner.ID)
	if err != nil {
		t.Fatalf("Resend failed: %v", err)
	}

	wantExpiry := time.Now().Add(models.InvitationTTL)
	diff := resent.Invitation.ExpiresAt.Sub(wantExpiry)
	if diff < -2*time.Second || diff > 2*time.Second {
		t.Errorf("ExpiresAt = %v, expected about %v", resent.Invitation.ExpiresAt, wantExpiry)
	}
	if resent.Invitation.Token != result.Invitation.Token {
		t.Error("resend must keep the original token")
	}
}

func TestInvitationResend_Expired(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	past := time.Now().Add(-time.Hour)
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{
		InviteeID: &invitee.ID,
		ExpiresAt: &past,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Resend(result.Invitation.ID, owner.ID)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, expected ErrExpired", err)
	}

	var inv models.Invitation
	db.First(&inv, result.Invitation.ID)
	if inv.Status != models.InvitationExpired {
		t.Errorf("Status = %q, expected %q", inv.Status, models.InvitationExpired)
	}
}

func TestInvitationListByProject(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	viewer := createTestUser(t, db, "viewer")
	outsider := createTestUser(t, db, "outsider")
	a := createTestUser(t, db, "alice")
	b := createTestUser(t, db, "bob")
	project := createTestProject(t, db, owner.ID, "website")
	addTestCollaborator(t, db, project.ID, viewer.ID, string(authz.RoleViewer))

	svc := NewInvitationService(db, nil)
	if _, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &a.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	result, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &b.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Accept(result.Invitation.Token, b.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	list, err := svc.ListByProject(project.ID, viewer.ID)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(list.Items) != 2 {
		t.Errorf("len(Items) = %d, expected 2", len(list.Items))
	}
	if list.PendingCount != 1 {
		t.Errorf("PendingCount = %d, expected 1", list.PendingCount)
	}
	if list.AcceptedCount != 1 {
		t.Errorf("AcceptedCount = %d, expected 1", list.AcceptedCount)
	}
	if list.CanManage {
		t.Error("viewer should not see CanManage")
	}

	ownerList, err := svc.ListByProject(project.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner ListByProject failed: %v", err)
	}
	if !ownerList.CanManage {
		t.Error("owner should see CanManage")
	}

	if _, err := svc.ListByProject(project.ID, outsider.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("outsider: err = %v, expected ErrNotFound", err)
	}
}

func TestMyInvitations(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	projectA := createTestProject(t, db, owner.ID, "alpha")
	projectB := createTestProject(t, db, owner.ID, "beta")

	svc := NewInvitationService(db, nil)
	if _, err := svc.Create(projectA.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Email invitations addressed to the account's email show up too.
	if _, err := svc.Create(projectB.ID, owner.ID, &CreateInvitationRequest{Email: invitee.Email}); err != nil {
		t.Fatalf("email Create failed: %v", err)
	}

	items, err := svc.MyInvitations(invitee.ID)
	if err != nil {
		t.Fatalf("MyInvitations failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, expected 2", len(items))
	}
}

func TestInvitationUniqueConstraint_Backstop(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	project := createTestProject(t, db, owner.ID, "website")

	svc := NewInvitationService(db, nil)
	if _, err := svc.Create(project.ID, owner.ID, &CreateInvitationRequest{InviteeID: &invitee.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Insert directly, bypassing the application-level pre-check, to make
	// sure the partial unique index holds on its own.
	dup := models.Invitation{
		ProjectID: project.ID,
		InviterID: owner.ID,
		InviteeID: &invitee.ID,
		Token:     "manual-token",
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(models.InvitationTTL),
	}
	err := db.Create(&dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("err = %v, expected gorm.ErrDuplicatedKey", err)
	}
}
