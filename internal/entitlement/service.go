package entitlement

import (
	"context"
	"time"

	"gymdesk/internal/apperr"
	"gymdesk/internal/member"
	"gymdesk/internal/membership"
)

// ExpiringSoonDays is the warning window before a membership lapses.
const ExpiringSoonDays = 7

// Resolution is the derived entitlement of a member: whether they may use
// the facility right now, and why not if they may not. Member is set
// whenever the member exists, so callers can name them in failure messages.
type Resolution struct {
	Valid        bool
	Reason       string
	Member       *member.Member
	Membership   *membership.Membership
	DaysLeft     int
	ExpiringSoon bool
}

type Service interface {
	// Resolve is a pure read; it never mutates state and is safe to retry.
	Resolve(ctx context.Context, memberID int) (*Resolution, error)
}

type service struct {
	members     member.Repository
	memberships membership.Repository
	now         func() time.Time
}

func NewService(members member.Repository, memberships membership.Repository) Service {
	return &service{
		members:     members,
		memberships: memberships,
		now:         time.Now,
	}
}

func (s *service) Resolve(ctx context.Context, memberID int) (*Resolution, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if m.Status != member.StatusActive {
		return &Resolution{
			Valid:  false,
			Reason: "member status is " + string(m.Status),
			Member: m,
		}, nil
	}

	today := s.now()
	best, err := s.memberships.GetBestActivePaid(ctx, memberID, today)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidState) {
			return &Resolution{
				Valid:  false,
				Reason: "no active paid membership",
				Member: m,
			}, nil
		}
		return nil, err
	}

	daysLeft := daysBetween(today, best.ExpiryDate)

	return &Resolution{
		Valid:        true,
		Member:       m,
		Membership:   best,
		DaysLeft:     daysLeft,
		ExpiringSoon: daysLeft <= ExpiringSoonDays,
	}, nil
}

// daysBetween counts whole calendar days from one date to another; expiry
// today counts as zero days left and is still valid.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
