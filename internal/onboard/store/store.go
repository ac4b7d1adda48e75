package store

import (
	"context"
	"errors"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrClaimConflict reports that a compare-and-swap claim matched no
	// row: the token was already claimed by a concurrent redemption (or
	// the record is gone).
	ErrClaimConflict = errors.New("store: claim conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement it. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Invitations() Invitations
	Profiles() Profiles
	Identities() Identities

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit() or Rollback() the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn
	// returns an error and committing otherwise. Preferred over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invitations interface {
	// CreateInvitation inserts a fresh draft row (id is an app ULID;
	// token_digest is the SHA-256 of the opaque secret).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByID fetches a single invitation.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetInvitationByTokenDigest looks a record up by exact digest
	// match, regardless of status, expiry or redemption state. The
	// caller decides what those mean.
	GetInvitationByTokenDigest(ctx context.Context, digest string) (domain.Invitation, error)

	// UpdateInvitationStatus moves the lifecycle forward (draft →
	// invited → active) and bumps updated_at.
	UpdateInvitationStatus(ctx context.Context, id string, status domain.InvitationStatus) error

	// ClaimInvitation atomically marks the invitation redeemed iff it
	// is still claimable (not yet redeemed, status draft or invited).
	// Returns ErrClaimConflict when another redemption got there first.
	ClaimInvitation(ctx context.Context, id string, at time.Time) error

	// ReleaseInvitationClaim clears redeemed_at so a failed migration
	// attempt does not burn the token. Compensation for ClaimInvitation.
	ReleaseInvitationClaim(ctx context.Context, id string) error

	// UpsertInvitation inserts the row or, when the auth provider has
	// already auto-provisioned a stub under the same id, updates it in
	// place. Must be a single atomic statement, not check-then-insert.
	UpsertInvitation(ctx context.Context, inv domain.Invitation) error

	// DeleteInvitation removes a row. Fails while a profile still
	// references it (child before parent).
	DeleteInvitation(ctx context.Context, id string) error

	// ListExpiredInvitations returns ids of unredeemed invitations
	// whose token expired before now. Housekeeping input.
	ListExpiredInvitations(ctx context.Context, now time.Time, limit int) ([]string, error)
}

type Profiles interface {
	// CreateProfile inserts a role profile keyed by its invitation id.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// GetProfileByInvitationID fetches the 1:1 profile row.
	GetProfileByInvitationID(ctx context.Context, invitationID string) (domain.Profile, error)

	// DeleteProfile removes the profile row.
	DeleteProfile(ctx context.Context, invitationID string) error
}

type Identities interface {
	// CreateIdentity inserts a new authenticated identity record.
	CreateIdentity(ctx context.Context, id, email, passwordHash string) error

	// GetIdentityByEmail fetches an identity with its password hash for
	// sign-in verification.
	GetIdentityByEmail(ctx context.Context, email string) (IdentityRecord, error)
}

// IdentityRecord is the stored shape of an identity, including the
// password hash that never leaves the store/provider boundary.
type IdentityRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
