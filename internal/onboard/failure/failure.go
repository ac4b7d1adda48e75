// Package failure defines the closed failure taxonomy shared by token
// validation and identity migration. Every public operation of the
// onboarding subsystem reports failures as one of these kinds; no other
// error values cross the subsystem boundary.
package failure

import (
	"errors"
	"fmt"
)

// Kind tags a failure with its position in the closed taxonomy.
type Kind string

const (
	// Expected, user-facing kinds. Recoverable by requesting a fresh
	// invitation.
	TokenNotFound    Kind = "token_not_found"
	TokenExpired     Kind = "token_expired"
	AlreadyCompleted Kind = "already_completed"

	// Infrastructure kinds raised during migration. Logged server-side
	// and surfaced for the user to retry or contact support.
	IdentityCreationFailed       Kind = "identity_creation_failed"
	RoleProfileMigrationFailed   Kind = "role_profile_migration_failed"
	InvitationFinalizationFailed Kind = "invitation_finalization_failed"
	SignInFailed                 Kind = "signin_failed"

	// Unknown covers storage or lookup faults whose detail must never
	// reach the caller.
	Unknown Kind = "unknown_error"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrTokenNotFound                = &Error{kind: TokenNotFound}
	ErrTokenExpired                 = &Error{kind: TokenExpired}
	ErrAlreadyCompleted             = &Error{kind: AlreadyCompleted}
	ErrIdentityCreationFailed       = &Error{kind: IdentityCreationFailed}
	ErrRoleProfileMigrationFailed   = &Error{kind: RoleProfileMigrationFailed}
	ErrInvitationFinalizationFailed = &Error{kind: InvitationFinalizationFailed}
	ErrSignInFailed                 = &Error{kind: SignInFailed}
	ErrUnknown                      = &Error{kind: Unknown}
)

// Error is a tagged failure. The wrapped cause stays server-side; only
// the kind is meant for callers.
type Error struct {
	kind  Kind
	cause error
}

// New builds a tagged failure wrapping cause (which may be nil).
func New(kind Kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

// Kind returns the failure's taxonomy tag.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.kind, e.cause)
	}
	return string(e.kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same kind, so
// errors.Is(err, failure.ErrTokenExpired) works regardless of cause.
func (e *Error) Is(target error) bool {
	var fe *Error
	if errors.As(target, &fe) {
		return e.kind == fe.kind
	}
	return false
}

// KindOf extracts the taxonomy tag from err, defaulting to Unknown for
// untagged errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return Unknown
}
