package sqlite

import (
	"context"
	"time"

	"github.com/tutorden/platform/internal/onboard/store"
)

type identitiesRepo struct {
	q querier
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, id, email, passwordHash string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO identities (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		id, email, passwordHash, encodeTime(time.Now()))
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByEmail(ctx context.Context, email string) (store.IdentityRecord, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM identities WHERE email = ?`, email)

	var (
		rec       store.IdentityRecord
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &createdAt); err != nil {
		return store.IdentityRecord{}, mapNotFound(err)
	}
	t, err := decodeTime(createdAt)
	if err != nil {
		return store.IdentityRecord{}, err
	}
	rec.CreatedAt = t
	return rec, nil
}
