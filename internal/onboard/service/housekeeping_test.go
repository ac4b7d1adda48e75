package service_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tutorden/platform/internal/onboard/service"
	"github.com/tutorden/platform/internal/onboard/store"
)

func TestSweepRemovesExpiredInvitations(t *testing.T) {
	t.Parallel()

	e := newEnv(t, -time.Hour)
	expired, _ := e.createTutor(t, "stale@example.com", 50)

	hk := service.NewHousekeepingService(e.store, slog.Default(), 0)
	n, err := hk.Sweep(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = e.store.Invitations().GetInvitationByID(t.Context(), expired.InvitationID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.store.Profiles().GetProfileByInvitationID(t.Context(), expired.InvitationID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSweepSparesLiveAndRedeemedRecords(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	_, token := e.createTutor(t, "ada@example.com", 60)

	res, err := e.migrator.Migrate(t.Context(), service.MigrateInput{
		Secret:   token,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	other, _ := e.createTutor(t, "grace@example.com", 70)

	hk := service.NewHousekeepingService(e.store, slog.Default(), 0)
	n, err := hk.Sweep(t.Context())
	require.NoError(t, err)
	require.Zero(t, n)

	// The migrated record still anchors already_completed detection.
	_, err = e.store.Invitations().GetInvitationByID(t.Context(), res.IdentityID)
	require.NoError(t, err)
	_, err = e.store.Invitations().GetInvitationByID(t.Context(), other.InvitationID)
	require.NoError(t, err)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	e := newEnv(t, 0)
	hk := service.NewHousekeepingService(e.store, slog.Default(), 10*time.Millisecond)
	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
