package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/service"
)

func TestValidateReturnsSnapshot(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	res, token := e.createTutor(t, "ada@example.com", 60)

	snap, err := e.validator.Validate(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, res.InvitationID, snap.ID)
	require.Equal(t, "Ada", snap.FirstName)
	require.Equal(t, "Lovelace", snap.LastName)
	require.Equal(t, "ada@example.com", snap.Email)
	require.Equal(t, domain.RoleTutor, snap.Role)
}

func TestValidateUnknownToken(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)

	_, err := e.validator.Validate(t.Context(), "deadbeef")
	require.ErrorIs(t, err, failure.ErrTokenNotFound)
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	// A negative ttl issues tokens that are already expired.
	e := newEnv(t, -time.Hour)
	_, token := e.createTutor(t, "ada@example.com", 60)

	_, err := e.validator.Validate(t.Context(), token)
	require.ErrorIs(t, err, failure.ErrTokenExpired)
}

func TestValidateRedeemedToken(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{
		Secret:   token,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	// Migration replaced the record, but the digest survives under the
	// new identity id, so the outcome is already_completed rather than
	// token_not_found.
	_, err = e.validator.Validate(t.Context(), token)
	require.ErrorIs(t, err, failure.ErrAlreadyCompleted)
}

func TestValidateExpiryWinsOverRedemption(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	res, token := e.createTutor(t, "ada@example.com", 60)

	require.NoError(t, e.store.Invitations().ClaimInvitation(t.Context(), res.InvitationID, time.Now().UTC()))

	// Push the expiry into the past on the claimed record.
	inv, err := e.store.Invitations().GetInvitationByID(t.Context(), res.InvitationID)
	require.NoError(t, err)
	past := time.Now().UTC().Add(-time.Hour)
	inv.TokenExpiry = &past
	require.NoError(t, e.store.Invitations().UpsertInvitation(t.Context(), inv))

	_, err = e.validator.Validate(t.Context(), token)
	require.ErrorIs(t, err, failure.ErrTokenExpired)
}
