package domain

import "time"

// Identity is a self-service authenticated account as reported by the
// auth provider. The ID is provider-generated and never caller-supplied.
type Identity struct {
	ID    string
	Email string
}

// Session is the signed-in state returned after a successful redemption.
type Session struct {
	IdentityID string
	Token      string
	ExpiresAt  time.Time
}
