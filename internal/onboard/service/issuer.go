// Package service implements the onboarding flows: invitation issuance,
// token validation, the identity migration saga, and housekeeping.
package service

import (
	"fmt"
	"time"

	"github.com/tutorden/platform/pkg/cryptox"
)

// DefaultTokenTTL is the redemption window for a fresh invitation token.
const DefaultTokenTTL = 48 * time.Hour

// IssuedToken pairs the plaintext secret (emailed, never stored) with
// the digest and expiry that are persisted.
type IssuedToken struct {
	Secret string
	Digest string
	Expiry time.Time
}

// TokenIssuer mints single-use invitation tokens.
type TokenIssuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer builds an issuer. A zero ttl falls back to
// DefaultTokenTTL.
func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Issue generates a fresh high-entropy secret and its stored companion
// values.
func (i *TokenIssuer) Issue() (IssuedToken, error) {
	secret, err := cryptox.GenerateSecret()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("service: failed to generate token secret: %w", err)
	}
	return IssuedToken{
		Secret: secret,
		Digest: cryptox.DigestSecret(secret),
		Expiry: i.now().Add(i.ttl),
	}, nil
}
