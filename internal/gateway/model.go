package gateway

import (
	"gymdesk/internal/member"
)

const (
	ActionCheck   = "check"
	ActionCheckIn = "checkin"
)

type ValidateRequest struct {
	MemberID int    `json:"member_id" binding:"required,gt=0"`
	Action   string `json:"action" binding:"omitempty,oneof=check checkin"`
}

type MemberPayload struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// MembershipPayload is the snapshot of the authoritative membership backing
// a valid resolution. Status is "warning" when the term is expiring soon.
type MembershipPayload struct {
	ID            int    `json:"id"`
	PlanName      string `json:"plan_name"`
	PlanType      string `json:"plan_type"`
	ExpiryDate    string `json:"expiry_date"`
	PaymentStatus string `json:"payment_status"`
	DaysLeft      int    `json:"days_left"`
	Status        string `json:"status"`
}

type ValidateResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	Member       *MemberPayload     `json:"member,omitempty"`
	Membership   *MembershipPayload `json:"membership,omitempty"`
	AttendanceID *int               `json:"attendance_id,omitempty"`
	CheckinTime  string             `json:"checkin_time,omitempty"`
	MemberName   string             `json:"member_name,omitempty"`
	MemberStatus string             `json:"member_status,omitempty"`
}

type SearchRow struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	StatusClass string `json:"status_class"`
	JoinDate    string `json:"join_date"`
	Visits      int    `json:"visits"`
}

type SearchResponse struct {
	Success bool        `json:"success"`
	Results []SearchRow `json:"results"`
}

// statusClass is the badge class the search UI renders for a member status.
func statusClass(status member.Status) string {
	switch status {
	case member.StatusActive:
		return "badge-success"
	case member.StatusSuspended:
		return "badge-danger"
	default:
		return "badge-secondary"
	}
}
