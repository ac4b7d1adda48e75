package service

import (
	"context"
	"errors"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/failure"
	"github.com/tutorden/platform/internal/onboard/store"
	"github.com/tutorden/platform/pkg/cryptox"
	"github.com/tutorden/platform/pkg/slogx"
)

// ValidatorService answers "is this invitation token still redeemable"
// without mutating anything.
type ValidatorService struct {
	store store.Store
	now   func() time.Time
}

func NewValidatorService(st store.Store) *ValidatorService {
	return &ValidatorService{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Validate resolves the secret to a pre-fill snapshot or a taxonomy
// failure. Check order matters: expiry is reported before redemption
// state, so an expired-and-redeemed token reads as expired.
func (s *ValidatorService) Validate(ctx context.Context, secret string) (domain.ProfileSnapshot, error) {
	digest := cryptox.DigestSecret(secret)

	inv, err := s.store.Invitations().GetInvitationByTokenDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ProfileSnapshot{}, failure.New(failure.TokenNotFound, nil)
		}
		slogx.FromContext(ctx).Error("token lookup failed", "error", err)
		return domain.ProfileSnapshot{}, failure.New(failure.Unknown, err)
	}

	if inv.Expired(s.now()) {
		return domain.ProfileSnapshot{}, failure.New(failure.TokenExpired, nil)
	}
	if inv.Redeemed() {
		return domain.ProfileSnapshot{}, failure.New(failure.AlreadyCompleted, nil)
	}

	return inv.Snapshot(), nil
}
