package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/identity/local"
	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/internal/onboard/store"
)

func TestMigrate(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	created, token := e.createTutor(t, "ada@example.com", 60)

	res, err := e.migrator.Migrate(t.Context(), service.MigrateInput{
		Secret:   token,
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.IdentityID)
	require.NotEqual(t, created.InvitationID, res.IdentityID)
	require.Equal(t, "ada@example.com", res.Email)
	require.NotEmpty(t, res.Session.Token)
	require.Equal(t, res.IdentityID, res.Session.IdentityID)

	// Old placeholder rows are gone.
	_, err = e.store.Invitations().GetInvitationByID(t.Context(), created.InvitationID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.store.Profiles().GetProfileByInvitationID(t.Context(), created.InvitationID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The migrated record lives under the new identity id with the
	// carried token fields and a redemption marker.
	inv, err := e.store.Invitations().GetInvitationByID(t.Context(), res.IdentityID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInvited, inv.Status)
	require.Equal(t, "ada@example.com", inv.Email)
	require.Equal(t, "Ada", inv.FirstName)
	require.NotEmpty(t, inv.TokenDigest)
	require.NotNil(t, inv.RedeemedAt)

	// Profile economics survive the move.
	profile, err := e.store.Profiles().GetProfileByInvitationID(t.Context(), res.IdentityID)
	require.NoError(t, err)
	require.NotNil(t, profile.HourlyRate)
	require.Equal(t, 60.0, *profile.HourlyRate)
	require.True(t, profile.AcceptingNewStudents)
}

func TestMigrateTwiceReportsAlreadyCompleted(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "correct horse battery"})
	require.NoError(t, err)

	_, err = e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "correct horse battery"})
	require.ErrorIs(t, err, failure.ErrAlreadyCompleted)
}

func TestMigrateUnknownToken(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)

	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: "deadbeef", Password: "pw"})
	require.ErrorIs(t, err, failure.ErrTokenNotFound)
}

func TestMigrateNameOverrides(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	res, err := e.migrator.Migrate(t.Context(), service.MigrateInput{
		Secret:    token,
		Password:  "correct horse battery",
		FirstName: "Augusta",
		LastName:  "King",
	})
	require.NoError(t, err)

	inv, err := e.store.Invitations().GetInvitationByID(t.Context(), res.IdentityID)
	require.NoError(t, err)
	require.Equal(t, "Augusta", inv.FirstName)
	require.Equal(t, "King", inv.LastName)
}

func TestMigrateIdentityFailureReleasesClaim(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	e.provider.failCreate = true
	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "pw"})
	require.ErrorIs(t, err, failure.ErrIdentityCreationFailed)

	// The claim was compensated: the token is not burned.
	_, err = e.validator.Validate(t.Context(), token)
	require.NoError(t, err)

	e.provider.failCreate = false
	_, err = e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "correct horse battery"})
	require.NoError(t, err)
}

func TestMigrateSignInFailureLeavesDataMigrated(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	created, token := e.createTutor(t, "ada@example.com", 60)

	e.provider.failSignIn = true
	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "correct horse battery"})
	require.ErrorIs(t, err, failure.ErrSignInFailed)

	// The migration itself completed; only the session is missing.
	_, err = e.store.Invitations().GetInvitationByID(t.Context(), created.InvitationID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.validator.Validate(t.Context(), token)
	require.ErrorIs(t, err, failure.ErrAlreadyCompleted)
}

func TestMigrateToleratesAutoProvisionedStub(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0, local.WithAutoProvision())
	_, token := e.createTutor(t, "ada@example.com", 60)

	res, err := e.migrator.Migrate(t.Context(), service.MigrateInput{
		Secret:   token,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	// The stub row the provider created under the identity id was
	// upserted into the full migrated record.
	inv, err := e.store.Invitations().GetInvitationByID(t.Context(), res.IdentityID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInvited, inv.Status)
	require.NotEmpty(t, inv.TokenDigest)
	require.NotNil(t, inv.RedeemedAt)
}

func TestMigrateExpiredToken(t *testing.T) {
	t.Parallel()

	e := newEnv(t, -1)
	created, token := e.createTutor(t, "ada@example.com", 60)

	_, err := e.migrator.Migrate(t.Context(), service.MigrateInput{Secret: token, Password: "pw"})
	require.ErrorIs(t, err, failure.ErrTokenExpired)

	// Rejected before the claim, so nothing was touched.
	inv, err := e.store.Invitations().GetInvitationByID(t.Context(), created.InvitationID)
	require.NoError(t, err)
	require.Nil(t, inv.RedeemedAt)
	_, err = e.store.Profiles().GetProfileByInvitationID(t.Context(), created.InvitationID)
	require.NoError(t, err)
}

func TestMigrateConcurrentRedemptions(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	in := service.MigrateInput{Secret: token, Password: "correct horse battery"}

	results := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := e.migrator.Migrate(t.Context(), in)
			results <- err
		}()
	}

	var succeeded, completed int
	for range 2 {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, failure.ErrAlreadyCompleted):
			completed++
		default:
			t.Fatalf("unexpected migration error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, completed)
}
