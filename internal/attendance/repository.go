package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gymdesk/internal/apperr"
)

const sessionColumns = `id, member_id, trainer_id, check_in, check_out, duration_minutes, workout_type, notes, created_at`

// uniqueViolation is the Postgres error code raised by the partial unique
// index on open sessions when two check-ins race.
const uniqueViolation = "23505"

// utcDay renders the UTC calendar date of t. Day-scoped queries must compare
// against the same UTC-pinned expression the attendance day indexes use, or
// the guard and the index disagree around midnight.
func utcDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CheckInRequest, checkIn time.Time) (*Session, error) {
	query := `
		INSERT INTO attendance (member_id, trainer_id, check_in, workout_type, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns + `
	`

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	var session Session
	err := r.db.QueryRowxContext(ctx, query,
		req.MemberID,
		req.TrainerID,
		checkIn,
		req.WorkoutType,
		notes,
	).StructScan(&session)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, apperr.Conflict("already checked in today")
		}
		return nil, err
	}

	return &session, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance
		WHERE id = $1
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("attendance record not found")
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) FindOpenForDay(ctx context.Context, memberID int, day time.Time) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance
		WHERE member_id = $1
		  AND check_out IS NULL
		  AND (check_in AT TIME ZONE 'UTC')::date = $2
	`

	var session Session
	err := r.db.GetContext(ctx, &session, query, memberID, utcDay(day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *repository) Close(ctx context.Context, id int, checkOut time.Time, durationMinutes int) (bool, error) {
	query := `
		UPDATE attendance
		SET check_out = $2, duration_minutes = $3
		WHERE id = $1 AND check_out IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, checkOut, durationMinutes)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) ListOpenForDay(ctx context.Context, day time.Time) ([]SessionWithMember, error) {
	query := `
		SELECT
			a.id,
			a.member_id,
			a.trainer_id,
			a.check_in,
			a.check_out,
			a.duration_minutes,
			a.workout_type,
			a.notes,
			a.created_at,
			m.first_name || ' ' || m.last_name AS member_name
		FROM attendance a
		JOIN members m ON a.member_id = m.id
		WHERE a.check_out IS NULL
		  AND (a.check_in AT TIME ZONE 'UTC')::date = $1
		ORDER BY a.check_in
	`

	sessions := []SessionWithMember{}
	err := r.db.SelectContext(ctx, &sessions, query, utcDay(day))
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return apperr.NotFound("attendance record not found")
	}

	return nil
}
