package membership

import "time"

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
	PaymentOverdue PaymentStatus = "Overdue"
)

// Membership is one purchased plan term. A member accumulates rows over
// time; renewal inserts a new term rather than rewriting the old one.
type Membership struct {
	ID            int           `db:"id" json:"id"`
	MemberID      int           `db:"member_id" json:"member_id"`
	PlanName      string        `db:"plan_name" json:"plan_name"`
	PlanType      string        `db:"plan_type" json:"plan_type"`
	PriceCents    int64         `db:"price_cents" json:"price_cents"`
	StartDate     time.Time     `db:"start_date" json:"start_date"`
	ExpiryDate    time.Time     `db:"expiry_date" json:"expiry_date"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentMethod *string       `db:"payment_method" json:"payment_method,omitempty"`
	AutoRenew     bool          `db:"auto_renew" json:"auto_renew"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

type RenewRequest struct {
	DurationMonths int    `json:"duration_months" binding:"required,gte=1,lte=36"`
	PaymentMethod  string `json:"payment_method" binding:"required,min=2,max=50"`
}

type RenewResponse struct {
	Membership *Membership `json:"membership"`
	Message    string      `json:"message" example:"Membership renewed"`
}
