package domain

import "time"

// Profile holds role-specific fields keyed 1:1 by the owning
// invitation's id. Its lifecycle is tied to that identity: created with
// the draft invitation, moved under the new identity id at migration.
type Profile struct {
	InvitationID string

	HourlyRate           *float64
	PaymentPreference    string
	AcceptingNewStudents bool
	Biography            string

	CreatedAt time.Time
	UpdatedAt time.Time
}
