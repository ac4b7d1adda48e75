// Package jwtx signs and verifies the short-lived EdDSA session tokens
// issued when a redeemed invitation signs its owner in. Keys are
// ephemeral: sessions do not need to survive a restart of the
// onboarding service.
package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a freshly issued session token lives.
const DefaultSessionTTL = 24 * time.Hour

// ErrInvalidToken reports a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Claims are the session token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies session tokens with a single Ed25519 key.
type Signer struct {
	priv   ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
	ttl    time.Duration
}

// NewSigner generates a fresh Ed25519 keypair. A zero ttl falls back to
// DefaultSessionTTL.
func NewSigner(issuer string, ttl time.Duration) (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate signing key: %w", err)
	}
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &Signer{priv: priv, pub: pub, issuer: issuer, ttl: ttl}, nil
}

// Sign issues a session token for the given subject and email.
func (s *Signer) Sign(subject, email string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(s.ttl)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.priv)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses and validates a session token, returning its claims.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
				return nil, fmt.Errorf("jwtx: unexpected signing method %q", t.Method.Alg())
			}
			return s.pub, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
