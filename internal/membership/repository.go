package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

const membershipColumns = `id, member_id, plan_name, plan_type, price_cents, start_date, expiry_date, payment_status, payment_method, auto_renew, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE id = $1
	`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("membership not found")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetBestActivePaid(ctx context.Context, memberID int, today time.Time) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE member_id = $1
		  AND expiry_date >= $2
		  AND payment_status = 'Paid'
		ORDER BY expiry_date DESC, created_at DESC, id DESC
		LIMIT 1
	`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, memberID, today.Format("2006-01-02"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.InvalidState("no active paid membership")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Renew locks the current term, computes the new window, and inserts the new
// term plus its payment ledger row in one transaction. Concurrent renewals
// of the same membership serialize on the row lock.
func (r *repository) Renew(ctx context.Context, membershipID, durationMonths int, paymentMethod string, today time.Time) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Membership
	err = tx.QueryRowxContext(ctx, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE id = $1
		FOR UPDATE
	`, membershipID).StructScan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("membership not found")
	}
	if err != nil {
		return nil, err
	}

	dates := CalculateRenewal(current.ExpiryDate, today, durationMonths)

	var renewed Membership
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO memberships (member_id, plan_name, plan_type, price_cents, start_date, expiry_date, payment_status, payment_method, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6, 'Paid', $7, $8)
		RETURNING `+membershipColumns+`
	`,
		current.MemberID,
		current.PlanName,
		current.PlanType,
		current.PriceCents,
		dates.NewStart.Format("2006-01-02"),
		dates.NewExpiry.Format("2006-01-02"),
		paymentMethod,
		current.AutoRenew,
	).StructScan(&renewed)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (membership_id, member_id, amount_cents, method)
		VALUES ($1, $2, $3, $4)
	`, renewed.ID, renewed.MemberID, renewed.PriceCents, paymentMethod)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &renewed, nil
}
