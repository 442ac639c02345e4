package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
)

const (
	notificationQueue = "gymdesk:notifications"
	ledgerQueue       = "gymdesk:ledger"

	popTimeout = 5 * time.Second
)

// NotificationEvent targets a user account; the consumer persists it so the
// member sees it on next login.
type NotificationEvent struct {
	UserID  int       `json:"user_id"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// LedgerEvent announces a membership marked Paid. The payment ledger system
// consumes the queue; nothing in this service reads it back.
type LedgerEvent struct {
	MembershipID int       `json:"membership_id"`
	MemberID     int       `json:"member_id"`
	AmountCents  int64     `json:"amount_cents"`
	Method       string    `json:"method"`
	Created      time.Time `json:"created"`
}

// Publisher is the boundary the domain services emit events through.
type Publisher interface {
	PublishNotification(ctx context.Context, userID int, message string) error
	PublishLedger(ctx context.Context, event LedgerEvent) error
}

type Service struct {
	redis *redis.Client
	db    *sqlx.DB
}

func New(redisAddr string, db *sqlx.DB) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		db: db,
	}
}

// NewWithClient wires an existing Redis client; used by tests.
func NewWithClient(client *redis.Client, db *sqlx.DB) *Service {
	return &Service{redis: client, db: db}
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) PublishNotification(ctx context.Context, userID int, message string) error {
	event := NotificationEvent{
		UserID:  userID,
		Message: message,
		Created: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, notificationQueue, data).Err(); err != nil {
		metrics.RecordEvent("notification", "failed")
		logger.Errorf("Failed to queue notification for user %d: %v", userID, err)
		return err
	}

	metrics.RecordEvent("notification", "queued")
	logger.Debug("Notification queued", "user_id", userID)
	return nil
}

func (s *Service) PublishLedger(ctx context.Context, event LedgerEvent) error {
	event.Created = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, ledgerQueue, data).Err(); err != nil {
		metrics.RecordEvent("ledger", "failed")
		logger.Errorf("Failed to queue ledger event for membership %d: %v", event.MembershipID, err)
		return err
	}

	metrics.RecordEvent("ledger", "queued")
	logger.Debug("Ledger event queued", "membership_id", event.MembershipID)
	return nil
}

// Start consumes the notification queue and persists each event. Ledger
// events stay on their queue for the payment system. Runs until ctx is done.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			if err := s.consumeOne(ctx); err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) {
				logger.Errorf("Notification worker error: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Service) consumeOne(ctx context.Context) error {
	result, err := s.redis.BRPop(ctx, popTimeout, notificationQueue).Result()
	if err != nil {
		return err
	}

	// BRPop returns [queue, payload].
	if len(result) != 2 {
		return nil
	}

	var event NotificationEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		logger.Errorf("Dropping malformed notification payload: %v", err)
		return nil
	}

	if length, err := s.redis.LLen(ctx, notificationQueue).Result(); err == nil {
		metrics.EventQueueLength.Set(float64(length))
	}

	return s.persist(ctx, event)
}

func (s *Service) persist(ctx context.Context, event NotificationEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2)
	`, event.UserID, event.Message)
	if err != nil {
		return err
	}

	metrics.RecordEvent("notification", "persisted")
	return nil
}
