package membership

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Membership, error)
	// GetBestActivePaid returns the qualifying membership with the latest
	// expiry on or after the given day, ties broken by most recent creation.
	GetBestActivePaid(ctx context.Context, memberID int, today time.Time) (*Membership, error)
	// Renew inserts a new Paid term computed from the current one and records
	// a payment ledger row, all in one transaction.
	Renew(ctx context.Context, membershipID, durationMonths int, paymentMethod string, today time.Time) (*Membership, error)
}
