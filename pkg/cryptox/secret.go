package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SecretSize is the entropy of an onboarding secret in bytes. 32 bytes
// gives 256 bits, hex-encoded to 64 characters for the redemption link.
const SecretSize = 32

// GenerateSecret returns a cryptographically random, hex-encoded secret.
// The plaintext is shown once in the redemption link and never persisted.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DigestSecret returns the deterministic SHA-256 digest of a secret,
// hex-encoded. The digest is what gets stored and looked up; knowing it
// does not let anyone reconstruct the secret.
func DigestSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
