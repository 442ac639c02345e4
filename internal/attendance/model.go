package attendance

import "time"

// Session is one gym visit. It is created at check-in and mutated exactly
// once, at check-out, when CheckOut and DurationMinutes are set.
type Session struct {
	ID              int        `db:"id" json:"id"`
	MemberID        int        `db:"member_id" json:"member_id"`
	TrainerID       *int       `db:"trainer_id" json:"trainer_id,omitempty"`
	CheckIn         time.Time  `db:"check_in" json:"check_in"`
	CheckOut        *time.Time `db:"check_out" json:"check_out,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	WorkoutType     string     `db:"workout_type" json:"workout_type"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

func (s *Session) IsOpen() bool {
	return s.CheckOut == nil
}

// SessionWithMember decorates a session with the member's name for staff
// listings.
type SessionWithMember struct {
	Session
	MemberName string `db:"member_name" json:"member_name"`
}

// CheckInRequest carries the attributes of a new visit.
type CheckInRequest struct {
	MemberID    int
	WorkoutType string
	TrainerID   *int
	Notes       string
}

type CheckOutResponse struct {
	Message         string `json:"message" example:"Checked out successfully"`
	DurationMinutes int    `json:"duration_minutes" example:"90"`
}
