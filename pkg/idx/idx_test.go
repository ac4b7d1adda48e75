package idx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tutorden/platform/pkg/idx"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	a := idx.New()
	b := idx.New()
	require.NotEqual(t, a, b)
	require.Less(t, a.String(), b.String(), "ULIDs from one generator are monotonic")
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := idx.New()
	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "   ", "not-a-ulid", "0000000000000000000000000!"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, id.Time())
	require.True(t, idx.Zero.Time().IsZero())
}
