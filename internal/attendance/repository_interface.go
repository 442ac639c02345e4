package attendance

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a new open session. A concurrent open session for the
	// same member and day surfaces as a Conflict via the storage constraint.
	Create(ctx context.Context, req CheckInRequest, checkIn time.Time) (*Session, error)
	GetByID(ctx context.Context, id int) (*Session, error)
	// FindOpenForDay returns the member's open session on the given day, or
	// nil when there is none.
	FindOpenForDay(ctx context.Context, memberID int, day time.Time) (*Session, error)
	// Close sets check_out and duration on a still-open session; reports
	// whether a row actually transitioned.
	Close(ctx context.Context, id int, checkOut time.Time, durationMinutes int) (bool, error)
	ListOpenForDay(ctx context.Context, day time.Time) ([]SessionWithMember, error)
	Delete(ctx context.Context, id int) error
}
