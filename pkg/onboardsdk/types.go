// Package onboardsdk is a typed client for the onboarding service, plus
// the request/response shapes its HTTP endpoints speak.
package onboardsdk

import "time"

// CreateInvitationRequest is the admin create-invitation body.
type CreateInvitationRequest struct {
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}

// CreateInvitationResponse reports the stored invitation. The plaintext
// token is never in here; it travels only in the invitation email.
type CreateInvitationResponse struct {
	InvitationID string    `json:"invitation_id"`
	Status       string    `json:"status"`
	TokenExpiry  time.Time `json:"token_expiry"`
}

// ValidateResponse pre-fills the redemption form.
type ValidateResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// RedeemResponse is the signed-in result of a successful redemption.
type RedeemResponse struct {
	IdentityID   string    `json:"identity_id"`
	Email        string    `json:"email"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ErrorResponse is the error body used by every endpoint. For
// onboarding failures Error carries the taxonomy kind.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks itemizes dependency health on the readyz probe.
type HealthChecks struct {
	Database string `json:"database"`
}
