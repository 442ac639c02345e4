package member

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/apperr"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Member, error) {
	query := `
		SELECT id, user_id, first_name, last_name, email, phone, status, join_date, created_at
		FROM members
		WHERE id = $1
	`

	var m Member
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("member not found")
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Search matches the term against name, email and phone, ranking first-name
// hits before last-name, email and phone hits. One prepared statement, all
// values bound.
func (r *repository) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	pattern := "%" + query + "%"

	stmt := `
		SELECT
			m.id,
			m.first_name || ' ' || m.last_name AS name,
			m.email,
			m.phone,
			m.status,
			m.join_date,
			(SELECT COUNT(*) FROM attendance a WHERE a.member_id = m.id) AS total_visits
		FROM members m
		WHERE
			m.first_name ILIKE $1 OR
			m.last_name ILIKE $1 OR
			m.email ILIKE $1 OR
			m.phone ILIKE $1 OR
			m.first_name || ' ' || m.last_name ILIKE $1
		ORDER BY
			CASE
				WHEN m.first_name ILIKE $1 THEN 1
				WHEN m.last_name ILIKE $1 THEN 2
				WHEN m.email ILIKE $1 THEN 3
				WHEN m.phone ILIKE $1 THEN 4
				ELSE 5
			END,
			m.first_name, m.last_name
		LIMIT $2
	`

	results := []SearchResult{}
	err := r.db.SelectContext(ctx, &results, stmt, pattern, limit)
	if err != nil {
		return nil, err
	}

	return results, nil
}
