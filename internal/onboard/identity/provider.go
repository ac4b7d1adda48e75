// Package identity abstracts the authentication provider that owns
// durable user identities. The migration saga only talks to this
// interface; whether identities live in our own table or an external
// IdP is a deployment concern.
package identity

import (
	"context"
	"errors"

	"github.com/tutorden/platform/internal/onboard/domain"
)

var (
	// ErrEmailTaken reports that an identity already exists for the email.
	ErrEmailTaken = errors.New("identity: email already registered")

	// ErrInvalidCredentials reports a failed email/password check.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Attributes are the display fields attached to a new identity.
type Attributes struct {
	FirstName string
	LastName  string
	Role      domain.Role
}

// Provider creates identities and signs them in.
type Provider interface {
	// Create provisions a new identity with the given credentials. The
	// returned Identity carries the provider-assigned id.
	Create(ctx context.Context, email, password string, attrs Attributes) (domain.Identity, error)

	// SignIn verifies credentials and mints a session.
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
}
