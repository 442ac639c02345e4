package member

import "time"

type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusSuspended Status = "Suspended"
)

type Member struct {
	ID        int       `db:"id" json:"id"`
	UserID    *int      `db:"user_id" json:"user_id,omitempty"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Status    Status    `db:"status" json:"status"`
	JoinDate  time.Time `db:"join_date" json:"join_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// SearchResult is one ranked row of a member search, including the lifetime
// visit count shown in the picker UI.
type SearchResult struct {
	ID       int       `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Email    string    `db:"email" json:"email"`
	Phone    *string   `db:"phone" json:"phone,omitempty"`
	Status   Status    `db:"status" json:"status"`
	JoinDate time.Time `db:"join_date" json:"join_date"`
	Visits   int       `db:"total_visits" json:"visits"`
}
