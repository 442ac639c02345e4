package notification

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

func TestPublishNotification(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(notificationQueue, `.*`).SetVal(1)

	svc := NewWithClient(client, nil)

	err := svc.PublishNotification(ctx, 42, "You were checked in by Admin Ann at 09:00")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishNotification_RedisDown(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(notificationQueue, `.*`).SetErr(assert.AnError)

	svc := NewWithClient(client, nil)

	err := svc.PublishNotification(ctx, 42, "hello")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishLedger(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(ledgerQueue, `.*`).SetVal(1)

	svc := NewWithClient(client, nil)

	err := svc.PublishLedger(ctx, LedgerEvent{
		MembershipID: 8,
		MemberID:     1,
		AmountCents:  4900,
		Method:       "card",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeOnePersistsEvent(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	payload, err := json.Marshal(NotificationEvent{UserID: 42, Message: "hello"})
	require.NoError(t, err)

	redisMock.ExpectBRPop(popTimeout, notificationQueue).
		SetVal([]string{notificationQueue, string(payload)})
	redisMock.ExpectLLen(notificationQueue).SetVal(0)

	dbMock.ExpectExec("INSERT INTO notifications").
		WithArgs(42, "hello").
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := NewWithClient(client, sqlxDB)

	require.NoError(t, svc.consumeOne(context.Background()))
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestConsumeOneDropsMalformedPayload(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	redisMock.ExpectBRPop(popTimeout, notificationQueue).
		SetVal([]string{notificationQueue, "not json"})

	svc := NewWithClient(client, nil)

	// malformed payloads are dropped, not retried
	assert.NoError(t, svc.consumeOne(context.Background()))
}
