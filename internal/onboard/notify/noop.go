package notify

import (
	"context"

	"github.com/tutorden/platform/pkg/idx"
	"github.com/tutorden/platform/pkg/slogx"
)

// NoOp accepts every message without delivering anything. Used in dev
// when no SMTP relay is configured; the link still lands in the logs so
// a developer can redeem locally.
type NoOp struct{}

func (NoOp) Send(ctx context.Context, msg Message) (string, error) {
	slogx.FromContext(ctx).Info("notification suppressed (no dispatcher configured)",
		"template", string(msg.Template),
		"recipient", msg.Recipient,
	)
	return idx.New().String(), nil
}
