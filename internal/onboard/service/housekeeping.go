package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tutorden/platform/internal/onboard/store"
)

// DefaultHousekeepingInterval is how often expired invitations are
// swept.
const DefaultHousekeepingInterval = time.Hour

// sweepBatchSize bounds how many expired records one sweep removes.
const sweepBatchSize = 256

// HousekeepingService removes expired, never-redeemed invitations and
// their role profiles. Redeemed records are never touched: they are
// what makes a used token validate as already completed instead of
// unknown.
type HousekeepingService struct {
	store    store.Store
	log      *slog.Logger
	interval time.Duration

	started bool
	stop    chan struct{}
	done    chan struct{}
}

func NewHousekeepingService(st store.Store, log *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	return &HousekeepingService{
		store:    st,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweeper. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	s.started = true
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if n, err := s.Sweep(context.Background()); err != nil {
					s.log.Error("housekeeping sweep failed", slog.Any("error", err))
				} else if n > 0 {
					s.log.Info("swept expired invitations", "count", n)
				}
			}
		}
	}()
}

// Stop shuts the sweeper down and waits for the current sweep to end.
// Safe to call when Start never ran.
func (s *HousekeepingService) Stop() {
	if !s.started {
		return
	}
	close(s.stop)
	<-s.done
}

// Sweep deletes one batch of expired unredeemed invitations, profile
// first so the FK holds. Returns how many invitations were removed.
func (s *HousekeepingService) Sweep(ctx context.Context) (int, error) {
	ids, err := s.store.Invitations().ListExpiredInvitations(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		err := s.store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Profiles().DeleteProfile(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			return tx.Invitations().DeleteInvitation(ctx, id)
		})
		if err != nil {
			s.log.Warn("failed to sweep invitation", "invitation_id", id, slog.Any("error", err))
			continue
		}
		removed++
	}
	return removed, nil
}
