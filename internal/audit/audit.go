// Package audit records who did what to which record. Writes are
// best-effort: a failed audit insert is logged and never fails the request.
package audit

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gymdesk/internal/logger"
)

type Recorder interface {
	Record(ctx context.Context, userID int, action, tableName string, recordID int)
}

type recorder struct {
	db *sqlx.DB
}

func NewRecorder(db *sqlx.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) Record(ctx context.Context, userID int, action, tableName string, recordID int) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, table_name, record_id)
		VALUES ($1, $2, $3, $4)
	`, userID, action, tableName, recordID)
	if err != nil {
		logger.Errorf("Failed to write audit log (%s on %s/%d by user %d): %v",
			action, tableName, recordID, userID, err)
	}
}
