package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tutorden/platform/internal/onboard/domain"
)

type profilesRepo struct {
	q querier
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	now := encodeTime(time.Now())

	var rate sql.NullFloat64
	if p.HourlyRate != nil {
		rate = sql.NullFloat64{Float64: *p.HourlyRate, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (invitation_id, hourly_rate, payment_preference,
			accepting_new_students, biography, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.InvitationID, rate, p.PaymentPreference, p.AcceptingNewStudents, p.Biography,
		now, now,
	)
	return mapConstraint(err)
}

func (r *profilesRepo) GetProfileByInvitationID(ctx context.Context, invitationID string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT invitation_id, hourly_rate, payment_preference,
			accepting_new_students, biography, created_at, updated_at
		FROM profiles WHERE invitation_id = ?`, invitationID)

	var (
		p                    domain.Profile
		rate                 sql.NullFloat64
		createdAt, updatedAt string
	)
	err := row.Scan(&p.InvitationID, &rate, &p.PaymentPreference,
		&p.AcceptingNewStudents, &p.Biography, &createdAt, &updatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	if rate.Valid {
		v := rate.Float64
		p.HourlyRate = &v
	}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return domain.Profile{}, err
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, invitationID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM profiles WHERE invitation_id = ?`, invitationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
