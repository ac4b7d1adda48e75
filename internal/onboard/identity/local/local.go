// Package local is the store-backed identity provider: argon2id
// password hashes in the identities table and ephemeral EdDSA session
// tokens.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/identity"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/pkg/cryptox"
	"github.com/tutorden/platform/pkg/idx"
	"github.com/tutorden/platform/pkg/jwtx"
	"github.com/tutorden/platform/pkg/slogx"
)

// Provider implements identity.Provider against the local store.
type Provider struct {
	store  store.Store
	signer *jwtx.Signer

	// autoProvision mirrors the behaviour of hosted auth providers that
	// eagerly create an application stub record for every new identity.
	// When set, Create also inserts a minimal draft invitation row under
	// the fresh identity id.
	autoProvision bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithAutoProvision turns on stub-record creation alongside each new
// identity.
func WithAutoProvision() Option {
	return func(p *Provider) { p.autoProvision = true }
}

func New(st store.Store, signer *jwtx.Signer, opts ...Option) *Provider {
	p := &Provider{store: st, signer: signer}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Create(ctx context.Context, email, password string, attrs identity.Attributes) (domain.Identity, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("local: failed to hash password: %w", err)
	}

	id := idx.New().String()
	if err := p.store.Identities().CreateIdentity(ctx, id, email, hash); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, identity.ErrEmailTaken
		}
		return domain.Identity{}, fmt.Errorf("local: failed to create identity: %w", err)
	}

	if p.autoProvision {
		p.provisionStub(ctx, id, email, attrs)
	}

	return domain.Identity{ID: id, Email: email}, nil
}

// provisionStub inserts the minimal application record some providers
// create as a side effect of identity creation. Best effort: the
// identity itself is already durable, and the migration upsert handles
// both the present and absent stub.
func (p *Provider) provisionStub(ctx context.Context, id, email string, attrs identity.Attributes) {
	now := time.Now().UTC()
	stub := domain.Invitation{
		ID:        id,
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		Email:     email,
		Role:      attrs.Role,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.store.Invitations().CreateInvitation(ctx, stub); err != nil {
		slogx.FromContext(ctx).Warn("failed to auto-provision stub record",
			"identity_id", id,
			"error", err,
		)
	}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	rec, err := p.store.Identities().GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, identity.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("local: failed to look up identity: %w", err)
	}

	if err := cryptox.VerifyPassword(password, rec.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Session{}, identity.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("local: failed to verify password: %w", err)
	}

	token, expiresAt, err := p.signer.Sign(rec.ID, rec.Email)
	if err != nil {
		return domain.Session{}, fmt.Errorf("local: failed to sign session: %w", err)
	}

	return domain.Session{
		IdentityID: rec.ID,
		Token:      token,
		ExpiresAt:  expiresAt,
	}, nil
}
