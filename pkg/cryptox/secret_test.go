package cryptox_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tutorden/platform/pkg/cryptox"
)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	require.Len(t, secret, cryptox.SecretSize*2, "secret should be hex-encoded")

	raw, err := hex.DecodeString(secret)
	require.NoError(t, err)
	require.Len(t, raw, cryptox.SecretSize)

	other, err := cryptox.GenerateSecret()
	require.NoError(t, err)
	require.NotEqual(t, secret, other)
}

func TestDigestSecret(t *testing.T) {
	t.Parallel()

	secret, err := cryptox.GenerateSecret()
	require.NoError(t, err)

	digest := cryptox.DigestSecret(secret)
	require.Len(t, digest, 64, "sha-256 hex digest is 64 chars")
	require.NotEqual(t, secret, digest)

	// Deterministic: same secret, same digest.
	require.Equal(t, digest, cryptox.DigestSecret(secret))

	// Known vector.
	require.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		cryptox.DigestSecret("hello"),
	)
}
