package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tutorden/platform/internal/onboard/failure"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	t.Parallel()

	cause := errors.New("row scan failed")
	err := failure.New(failure.Unknown, cause)

	require.ErrorIs(t, err, failure.ErrUnknown)
	require.NotErrorIs(t, err, failure.ErrTokenExpired)
	require.ErrorIs(t, err, cause, "cause stays unwrappable for logs")
}

func TestKindSurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("redeem: %w", failure.New(failure.TokenExpired, nil))
	require.ErrorIs(t, err, failure.ErrTokenExpired)
	require.Equal(t, failure.TokenExpired, failure.KindOf(err))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, failure.Kind(""), failure.KindOf(nil))
	require.Equal(t, failure.Unknown, failure.KindOf(errors.New("plain")))
	require.Equal(t, failure.SignInFailed, failure.KindOf(failure.New(failure.SignInFailed, nil)))
}

func TestErrorStringOmitsNilCause(t *testing.T) {
	t.Parallel()

	require.Equal(t, "token_not_found", failure.New(failure.TokenNotFound, nil).Error())
	require.Equal(t, "unknown_error: boom", failure.New(failure.Unknown, errors.New("boom")).Error())
}
