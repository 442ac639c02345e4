package membership

import (
	"context"
	"time"

	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
	"gymdesk/internal/notification"
)

type Service interface {
	Renew(ctx context.Context, membershipID, durationMonths int, paymentMethod string) (*Membership, error)
}

type service struct {
	repo   Repository
	events notification.Publisher
	now    func() time.Time
}

func NewService(repo Repository, events notification.Publisher) Service {
	return &service{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

func (s *service) Renew(ctx context.Context, membershipID, durationMonths int, paymentMethod string) (*Membership, error) {
	renewed, err := s.repo.Renew(ctx, membershipID, durationMonths, paymentMethod, s.now())
	if err != nil {
		metrics.RecordRenewal("failed")
		return nil, err
	}

	metrics.RecordRenewal("success")
	logger.Info("Membership renewed",
		"membership_id", renewed.ID,
		"member_id", renewed.MemberID,
		"new_expiry", renewed.ExpiryDate.Format("2006-01-02"),
	)

	// The renewal itself committed; a ledger publish failure is logged by the
	// publisher and must not undo the renewal.
	_ = s.events.PublishLedger(ctx, notification.LedgerEvent{
		MembershipID: renewed.ID,
		MemberID:     renewed.MemberID,
		AmountCents:  renewed.PriceCents,
		Method:       paymentMethod,
	})

	return renewed, nil
}
