package attendance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gymdesk/internal/apperr"
	"gymdesk/internal/auth"
	"gymdesk/internal/entitlement"
	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
	"gymdesk/internal/notification"
)

const DefaultWorkoutType = "General"

// Service owns the open/closed lifecycle of daily visits. At most one
// session per member may be open on a given day.
type Service interface {
	CheckIn(ctx context.Context, caller auth.Identity, req CheckInRequest) (*Session, error)
	CheckOut(ctx context.Context, sessionID int) (int, error)
	// CheckOutOpenSessionForMember closes today's open session if one exists;
	// it is a silent no-op otherwise. Used for implicit close-out on logout.
	CheckOutOpenSessionForMember(ctx context.Context, memberID int) error
	ListOpenToday(ctx context.Context) ([]SessionWithMember, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo     Repository
	resolver entitlement.Service
	events   notification.Publisher
	now      func() time.Time
}

func NewService(repo Repository, resolver entitlement.Service, events notification.Publisher) Service {
	return &service{
		repo:     repo,
		resolver: resolver,
		events:   events,
		now:      time.Now,
	}
}

func (s *service) CheckIn(ctx context.Context, caller auth.Identity, req CheckInRequest) (*Session, error) {
	res, err := s.resolver.Resolve(ctx, req.MemberID)
	if err != nil {
		metrics.RecordCheckIn("error")
		return nil, err
	}
	if !res.Valid {
		metrics.RecordCheckIn("rejected")
		return nil, apperr.InvalidState(res.Reason)
	}

	now := s.now()

	open, err := s.repo.FindOpenForDay(ctx, req.MemberID, now)
	if err != nil {
		metrics.RecordCheckIn("error")
		return nil, err
	}
	if open != nil {
		metrics.RecordCheckIn("conflict")
		return nil, apperr.Conflict("already checked in today")
	}

	if strings.TrimSpace(req.WorkoutType) == "" {
		req.WorkoutType = DefaultWorkoutType
	}

	// A trainer checking in a member without naming one is the session's
	// trainer.
	if req.TrainerID == nil && caller.Role == auth.RoleTrainer {
		req.TrainerID = caller.TrainerID
	}

	session, err := s.repo.Create(ctx, req, now)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			metrics.RecordCheckIn("conflict")
		} else {
			metrics.RecordCheckIn("error")
		}
		return nil, err
	}

	metrics.RecordCheckIn("success")
	logger.Info("Member checked in",
		"member_id", req.MemberID,
		"attendance_id", session.ID,
		"by_user", caller.UserID,
	)

	if caller.IsStaff() && res.Member.UserID != nil {
		message := fmt.Sprintf("You were checked in by %s %s at %s",
			capitalize(caller.Role), caller.Name, now.Format("15:04"))
		_ = s.events.PublishNotification(ctx, *res.Member.UserID, message)
	}

	return session, nil
}

func (s *service) CheckOut(ctx context.Context, sessionID int) (int, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if !session.IsOpen() {
		return 0, apperr.Conflict("already checked out")
	}

	now := s.now()
	duration := durationMinutes(session.CheckIn, now)

	closed, err := s.repo.Close(ctx, sessionID, now, duration)
	if err != nil {
		return 0, err
	}
	if !closed {
		// Lost a race with another check-out.
		return 0, apperr.Conflict("already checked out")
	}

	metrics.RecordCheckOut()
	logger.Info("Member checked out",
		"attendance_id", sessionID,
		"duration_minutes", duration,
	)

	return duration, nil
}

func (s *service) CheckOutOpenSessionForMember(ctx context.Context, memberID int) error {
	now := s.now()

	open, err := s.repo.FindOpenForDay(ctx, memberID, now)
	if err != nil {
		return err
	}
	if open == nil {
		return nil
	}

	duration := durationMinutes(open.CheckIn, now)
	closed, err := s.repo.Close(ctx, open.ID, now, duration)
	if err != nil {
		return err
	}
	if closed {
		metrics.RecordCheckOut()
		logger.Info("Open session closed on logout",
			"member_id", memberID,
			"attendance_id", open.ID,
		)
	}

	return nil
}

func (s *service) ListOpenToday(ctx context.Context) ([]SessionWithMember, error) {
	return s.repo.ListOpenForDay(ctx, s.now())
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// durationMinutes rounds the visit length to whole minutes; a sub-minute
// visit rounds to zero.
func durationMinutes(checkIn, checkOut time.Time) int {
	return int(math.Round(checkOut.Sub(checkIn).Minutes()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
