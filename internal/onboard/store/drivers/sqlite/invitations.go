package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
	"github.com/tutorden/platform/internal/onboard/store"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, first_name, last_name, email, role, status,
	token_digest, token_expiry, redeemed_at, created_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := encodeTime(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, first_name, last_name, email, role, status,
			token_digest, token_expiry, redeemed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.FirstName, inv.LastName, inv.Email, string(inv.Role), string(inv.Status),
		mapStringNull(inv.TokenDigest), encodeTimePtr(inv.TokenExpiry), encodeTimePtr(inv.RedeemedAt),
		now, now,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByTokenDigest(ctx context.Context, digest string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations WHERE token_digest = ?`, digest)
	return scanInvitation(row)
}

func (r *invitationsRepo) UpdateInvitationStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), encodeTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ClaimInvitation is the compare-and-swap that guarantees at most one
// successful migration per token: only a row that has never been
// redeemed and is still in a redeemable status matches.
func (r *invitationsRepo) ClaimInvitation(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations
		SET redeemed_at = ?, updated_at = ?
		WHERE id = ? AND redeemed_at IS NULL AND status IN ('draft', 'invited')`,
		encodeTime(at), encodeTime(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrClaimConflict
	}
	return nil
}

func (r *invitationsRepo) ReleaseInvitationClaim(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations
		SET redeemed_at = NULL, updated_at = ?
		WHERE id = ? AND redeemed_at IS NOT NULL`,
		encodeTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpsertInvitation is a single atomic statement so a stub row the auth
// provider auto-provisioned under the same id cannot race a plain
// insert into a duplicate.
func (r *invitationsRepo) UpsertInvitation(ctx context.Context, inv domain.Invitation) error {
	now := encodeTime(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, first_name, last_name, email, role, status,
			token_digest, token_expiry, redeemed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name   = excluded.first_name,
			last_name    = excluded.last_name,
			email        = excluded.email,
			role         = excluded.role,
			status       = excluded.status,
			token_digest = excluded.token_digest,
			token_expiry = excluded.token_expiry,
			redeemed_at  = excluded.redeemed_at,
			updated_at   = excluded.updated_at`,
		inv.ID, inv.FirstName, inv.LastName, inv.Email, string(inv.Role), string(inv.Status),
		mapStringNull(inv.TokenDigest), encodeTimePtr(inv.TokenExpiry), encodeTimePtr(inv.RedeemedAt),
		now, now,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) ListExpiredInvitations(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id FROM invitations
		WHERE redeemed_at IS NULL AND token_expiry IS NOT NULL AND token_expiry < ?
		ORDER BY token_expiry
		LIMIT ?`,
		encodeTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv                      domain.Invitation
		role, status             string
		digest, expiry, redeemed sql.NullString
		createdAt, updatedAt     string
	)
	err := row.Scan(
		&inv.ID, &inv.FirstName, &inv.LastName, &inv.Email, &role, &status,
		&digest, &expiry, &redeemed, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}

	inv.Role = domain.Role(role)
	inv.Status = domain.InvitationStatus(status)
	inv.TokenDigest = mapNullString(digest)

	if inv.TokenExpiry, err = decodeTimePtr(expiry); err != nil {
		return domain.Invitation{}, err
	}
	if inv.RedeemedAt, err = decodeTimePtr(redeemed); err != nil {
		return domain.Invitation{}, err
	}
	if inv.CreatedAt, err = decodeTime(createdAt); err != nil {
		return domain.Invitation{}, err
	}
	if inv.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return domain.Invitation{}, err
	}
	return inv, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
