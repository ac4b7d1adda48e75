package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the RFC 9106 low-memory profile,
// which is plenty for an onboarding service that hashes a password once
// per redemption.
const (
	argonMemory      = 64 * 1024 // KiB
	argonIterations  = 3
	argonParallelism = 2
	saltLength       = 16
	keyLength        = 32
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword returns a PHC-format Argon2id hash string embedding the
// salt and parameters, so they can evolve without a schema change.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style
// Argon2id hash in constant time. Returns ErrPasswordMismatch when the
// password is wrong, or a descriptive error for malformed hashes.
func VerifyPassword(password, encodedHash string) error {
	var (
		version          int
		mem, iters       uint32
		par              uint8
		b64Salt, b64Hash string
	)
	n, err := fmt.Sscanf(encodedHash, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &version, &mem, &iters, &par, &b64Salt)
	if err != nil || n != 5 {
		return errors.New("cryptox: invalid hash format")
	}
	if version != argon2.Version {
		return fmt.Errorf("cryptox: unsupported argon2 version %d", version)
	}

	// Sscanf's %s is greedy; the salt and hash are still joined by '$'.
	for i := range len(b64Salt) {
		if b64Salt[i] == '$' {
			b64Hash = b64Salt[i+1:]
			b64Salt = b64Salt[:i]
			break
		}
	}
	if b64Hash == "" {
		return errors.New("cryptox: invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(b64Salt)
	if err != nil {
		return fmt.Errorf("cryptox: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(b64Hash)
	if err != nil {
		return fmt.Errorf("cryptox: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expected))) // #nosec G115

	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
