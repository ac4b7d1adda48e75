package domain

import "time"

// Role tags an invitation with the kind of account being provisioned.
type Role string

const (
	RoleTutor  Role = "tutor"
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTutor, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// InvitationStatus is the stored lifecycle state of an invitation.
// Expiry is a derived condition, never a stored status.
type InvitationStatus string

const (
	// StatusDraft: record created, token issued, email not yet confirmed sent.
	StatusDraft InvitationStatus = "draft"
	// StatusInvited: redemption email confirmed dispatched.
	StatusInvited InvitationStatus = "invited"
	// StatusActive: account activated (terminal; a later admin step).
	StatusActive InvitationStatus = "active"
)

// Invitation is an administrator-created placeholder identity awaiting
// self-service completion. Before redemption its ID is a ULID minted by
// this service; after migration the row lives under the auth-provider
// identity id instead.
type Invitation struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      Role
	Status    InvitationStatus

	// TokenDigest and TokenExpiry are present iff the invitation is
	// still redeemable or has been redeemed; the plaintext secret is
	// never stored anywhere.
	TokenDigest string
	TokenExpiry *time.Time

	// RedeemedAt is set the moment a redemption claims this token.
	// A digest whose record carries RedeemedAt never validates again.
	RedeemedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the token window has passed.
func (i *Invitation) Expired(now time.Time) bool {
	return i.TokenExpiry != nil && i.TokenExpiry.Before(now)
}

// Redeemed reports whether the token has already been claimed.
func (i *Invitation) Redeemed() bool {
	return i.RedeemedAt != nil
}

// Snapshot returns the minimal read-only view handed to the redemption
// form after a successful validation.
func (i *Invitation) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		ID:        i.ID,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Email:     i.Email,
		Role:      i.Role,
	}
}

// ProfileSnapshot pre-fills the redemption form. It carries no secrets
// and no profile economics.
type ProfileSnapshot struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}
