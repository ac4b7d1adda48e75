package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/identity"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/pkg/cryptox"
	"github.com/tutorden/platform/pkg/slogx"
)

// MigrateInput is a redemption request: the emailed secret, the chosen
// password, and optional corrections to the admin-entered names.
type MigrateInput struct {
	Secret    string
	Password  string
	FirstName string
	LastName  string
}

// MigrateResult is the signed-in outcome of a successful migration.
type MigrateResult struct {
	IdentityID string
	Email      string
	Session    domain.Session
}

// MigratorService converts a placeholder invitation into a real
// authenticated identity. The conversion runs as an ordered saga: the
// token claim is compensated on abort, everything after the identity
// exists is not, and that asymmetry is logged step by step so a partial
// migration is diagnosable from the logs alone.
type MigratorService struct {
	store    store.Store
	provider identity.Provider
	now      func() time.Time
}

func NewMigratorService(st store.Store, provider identity.Provider) *MigratorService {
	return &MigratorService{
		store:    st,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// sagaStep is one named unit of the migration. A nil compensate means
// the step's effects survive a later abort.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// Migrate redeems the token and returns a live session. Every failure
// is tagged with a taxonomy kind; the claim is released when migration
// aborts before any durable damage, so the token stays usable.
func (s *MigratorService) Migrate(ctx context.Context, in MigrateInput) (MigrateResult, error) {
	old, err := s.resolve(ctx, in.Secret)
	if err != nil {
		return MigrateResult{}, err
	}

	m := &migration{svc: s, old: old, in: in, claimedAt: s.now()}

	steps := []sagaStep{
		{name: "claim_token", run: m.claimToken, compensate: m.releaseClaim},
		{name: "create_identity", run: m.createIdentity},
		{name: "capture_profile", run: m.captureProfile},
		{name: "delete_profile", run: m.deleteProfile},
		{name: "delete_invitation", run: m.deleteInvitation},
		{name: "upsert_invitation", run: m.upsertInvitation},
		{name: "insert_profile", run: m.insertProfile},
		{name: "sign_in", run: m.signIn},
	}

	log := slogx.FromContext(ctx).With("invitation_id", old.ID)
	for i, step := range steps {
		if err := step.run(ctx); err != nil {
			log.Error("migration step failed",
				"step", step.name,
				"kind", string(failure.KindOf(err)),
				slog.Any("error", err),
			)
			s.unwind(ctx, log, steps[:i])
			return MigrateResult{}, err
		}
	}

	log.Info("identity migrated",
		"identity_id", m.identity.ID,
		"role", string(old.Role),
	)

	return MigrateResult{
		IdentityID: m.identity.ID,
		Email:      m.identity.Email,
		Session:    m.session,
	}, nil
}

// unwind walks completed steps in reverse. Steps without a compensation
// are logged as such rather than silently skipped.
func (s *MigratorService) unwind(ctx context.Context, log *slog.Logger, completed []sagaStep) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			log.Warn("migration step left in place", "step", step.name, "compensation", "none")
			continue
		}
		if err := step.compensate(ctx); err != nil {
			log.Error("migration compensation failed", "step", step.name, slog.Any("error", err))
			continue
		}
		log.Info("migration step compensated", "step", step.name)
	}
}

// resolve maps the secret to its invitation record, applying the same
// taxonomy ordering as validation.
func (s *MigratorService) resolve(ctx context.Context, secret string) (domain.Invitation, error) {
	inv, err := s.store.Invitations().GetInvitationByTokenDigest(ctx, cryptox.DigestSecret(secret))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, failure.New(failure.TokenNotFound, nil)
		}
		slogx.FromContext(ctx).Error("token lookup failed", "error", err)
		return domain.Invitation{}, failure.New(failure.Unknown, err)
	}
	if inv.Expired(s.now()) {
		return domain.Invitation{}, failure.New(failure.TokenExpired, nil)
	}
	if inv.Redeemed() {
		return domain.Invitation{}, failure.New(failure.AlreadyCompleted, nil)
	}
	return inv, nil
}

// migration carries the saga's working state between steps.
type migration struct {
	svc       *MigratorService
	old       domain.Invitation
	in        MigrateInput
	claimedAt time.Time

	identity domain.Identity
	profile  domain.Profile
	session  domain.Session
}

// claimToken atomically burns the token. Losing the compare-and-swap
// means a concurrent redemption won; that reads as already completed.
func (m *migration) claimToken(ctx context.Context) error {
	err := m.svc.store.Invitations().ClaimInvitation(ctx, m.old.ID, m.claimedAt)
	if err != nil {
		if errors.Is(err, store.ErrClaimConflict) {
			return failure.New(failure.AlreadyCompleted, err)
		}
		return failure.New(failure.Unknown, err)
	}
	return nil
}

func (m *migration) releaseClaim(ctx context.Context) error {
	return m.svc.store.Invitations().ReleaseInvitationClaim(ctx, m.old.ID)
}

func (m *migration) createIdentity(ctx context.Context) error {
	id, err := m.svc.provider.Create(ctx, m.old.Email, m.in.Password, identity.Attributes{
		FirstName: m.firstName(),
		LastName:  m.lastName(),
		Role:      m.old.Role,
	})
	if err != nil {
		return failure.New(failure.IdentityCreationFailed, err)
	}
	m.identity = id
	return nil
}

// captureProfile reads the fields to carry over. A read failure is
// logged and the migration proceeds with defaults rather than aborting
// after the identity already exists.
func (m *migration) captureProfile(ctx context.Context) error {
	p, err := m.svc.store.Profiles().GetProfileByInvitationID(ctx, m.old.ID)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to read role profile, migrating with defaults",
			"invitation_id", m.old.ID,
			slog.Any("error", err),
		)
		m.profile = domain.Profile{AcceptingNewStudents: true, CreatedAt: m.claimedAt}
		return nil
	}
	m.profile = p
	return nil
}

func (m *migration) deleteProfile(ctx context.Context) error {
	err := m.svc.store.Profiles().DeleteProfile(ctx, m.old.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return failure.New(failure.RoleProfileMigrationFailed, err)
	}
	return nil
}

func (m *migration) deleteInvitation(ctx context.Context) error {
	if err := m.svc.store.Invitations().DeleteInvitation(ctx, m.old.ID); err != nil {
		return failure.New(failure.InvitationFinalizationFailed, err)
	}
	return nil
}

// upsertInvitation writes the migrated record under the new identity
// id. Upsert rather than insert: the auth provider may have already
// auto-provisioned a stub row with this id. The carried digest, expiry
// and redeemed_at are what make later validations of the same token
// report already_completed instead of token_not_found.
func (m *migration) upsertInvitation(ctx context.Context) error {
	redeemedAt := m.claimedAt
	inv := domain.Invitation{
		ID:          m.identity.ID,
		FirstName:   m.firstName(),
		LastName:    m.lastName(),
		Email:       m.old.Email,
		Role:        m.old.Role,
		Status:      domain.StatusInvited,
		TokenDigest: m.old.TokenDigest,
		TokenExpiry: m.old.TokenExpiry,
		RedeemedAt:  &redeemedAt,
		CreatedAt:   m.old.CreatedAt,
		UpdatedAt:   m.svc.now(),
	}
	if err := m.svc.store.Invitations().UpsertInvitation(ctx, inv); err != nil {
		return failure.New(failure.InvitationFinalizationFailed, err)
	}
	return nil
}

func (m *migration) insertProfile(ctx context.Context) error {
	p := m.profile
	p.InvitationID = m.identity.ID
	p.UpdatedAt = m.svc.now()
	if err := m.svc.store.Profiles().CreateProfile(ctx, p); err != nil {
		return failure.New(failure.RoleProfileMigrationFailed, err)
	}
	return nil
}

func (m *migration) signIn(ctx context.Context) error {
	sess, err := m.svc.provider.SignIn(ctx, m.identity.Email, m.in.Password)
	if err != nil {
		return failure.New(failure.SignInFailed, err)
	}
	m.session = sess
	return nil
}

func (m *migration) firstName() string {
	if m.in.FirstName != "" {
		return m.in.FirstName
	}
	return m.old.FirstName
}

func (m *migration) lastName() string {
	if m.in.LastName != "" {
		return m.in.LastName
	}
	return m.old.LastName
}
