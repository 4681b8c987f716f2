package models

import (
	"time"
)

// Invitation lifecycle states. An invitation starts pending and moves to
// exactly one terminal state; it never transitions again. "expired" marks
// a timeout discovered lazily, "cancelled" an explicit withdrawal — the
// two are distinct on purpose, they carry different audit meaning.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// InvitationTTL is the default validity window for a new invitation.
const InvitationTTL = 30 * 24 * time.Hour

// Invitation is a time-bounded offer of collaborator access. The recipient
// is either a registered user (InviteeID) or a bare email address, never
// both. At most one pending invitation may exist per (project, invitee)
// and per (project, email); the partial unique indexes enforce that even
// under concurrent creation.
type Invitation struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ProjectID  uint       `gorm:"uniqueIndex:idx_pending_invitee,where:status = 'pending';uniqueIndex:idx_pending_email;not null" json:"project_id"`
	Project    *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	InviterID  uint       `gorm:"index;not null" json:"inviter_id"`
	Inviter    *User      `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	InviteeID  *uint      `gorm:"uniqueIndex:idx_pending_invitee" json:"invitee_id"`
	Invitee    *User      `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
	Email      string     `gorm:"uniqueIndex:idx_pending_email,where:status = 'pending' AND email <> '';size:255" json:"email"`
	Token      string     `gorm:"uniqueIndex;size:36;not null" json:"-"`
	Status     string     `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
}

func (Invitation) TableName() string { return "invitations" }

// IsExpired reports whether the expiry deadline has passed. The status
// field is only flipped to expired when the expiry is observed (accept or
// resend); there is no background sweep.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// RecipientEmail returns the address the invitation mail goes to.
func (i *Invitation) RecipientEmail() string {
	if i.Invitee != nil {
		return i.Invitee.Email
	}
	return i.Email
}
