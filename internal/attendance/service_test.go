package attendance

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/apperr"
	"gymdesk/internal/auth"
	"gymdesk/internal/entitlement"
	"gymdesk/internal/logger"
	"gymdesk/internal/member"
	"gymdesk/internal/notification"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type MockRepo struct{ mock.Mock }
type MockResolver struct{ mock.Mock }
type MockPublisher struct{ mock.Mock }

func (m *MockRepo) Create(ctx context.Context, req CheckInRequest, checkIn time.Time) (*Session, error) {
	args := m.Called(ctx, req, checkIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id int) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepo) FindOpenForDay(ctx context.Context, memberID int, day time.Time) (*Session, error) {
	args := m.Called(ctx, memberID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepo) Close(ctx context.Context, id int, checkOut time.Time, durationMinutes int) (bool, error) {
	args := m.Called(ctx, id, checkOut, durationMinutes)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) ListOpenForDay(ctx context.Context, day time.Time) ([]SessionWithMember, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SessionWithMember), args.Error(1)
}

func (m *MockRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockResolver) Resolve(ctx context.Context, memberID int) (*entitlement.Resolution, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entitlement.Resolution), args.Error(1)
}

func (m *MockPublisher) PublishNotification(ctx context.Context, userID int, message string) error {
	return m.Called(ctx, userID, message).Error(0)
}

func (m *MockPublisher) PublishLedger(ctx context.Context, event notification.LedgerEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newTestService(repo *MockRepo, resolver *MockResolver, events *MockPublisher, now time.Time) Service {
	svc := NewService(repo, resolver, events).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func validResolution(memberID int, userID *int) *entitlement.Resolution {
	return &entitlement.Resolution{
		Valid: true,
		Member: &member.Member{
			ID:        memberID,
			UserID:    userID,
			FirstName: "Jane",
			LastName:  "Doe",
			Status:    member.StatusActive,
		},
	}
}

func staffCaller() auth.Identity {
	return auth.Identity{UserID: 50, Name: "Ann Admin", Role: auth.RoleAdmin}
}

func TestCheckIn_Success(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	resolver.On("Resolve", mock.Anything, 1).Return(validResolution(1, nil), nil)
	repo.On("FindOpenForDay", mock.Anything, 1, now).Return(nil, nil)
	repo.On("Create", mock.Anything, CheckInRequest{MemberID: 1, WorkoutType: "General"}, now).
		Return(&Session{ID: 10, MemberID: 1, CheckIn: now, WorkoutType: "General"}, nil)

	session, err := svc.CheckIn(context.Background(), staffCaller(), CheckInRequest{MemberID: 1})
	require.NoError(t, err)

	assert.Equal(t, 10, session.ID)
	assert.Equal(t, "General", session.WorkoutType)
	events.AssertNotCalled(t, "PublishNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_StaffCheckinNotifiesLinkedMember(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	linkedUser := 42
	resolver.On("Resolve", mock.Anything, 1).Return(validResolution(1, &linkedUser), nil)
	repo.On("FindOpenForDay", mock.Anything, 1, now).Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything, now).
		Return(&Session{ID: 11, MemberID: 1, CheckIn: now}, nil)
	events.On("PublishNotification", mock.Anything, 42, "You were checked in by Admin Ann Admin at 09:00").
		Return(nil)

	_, err := svc.CheckIn(context.Background(), staffCaller(), CheckInRequest{MemberID: 1})
	require.NoError(t, err)

	events.AssertExpectations(t)
}

func TestCheckIn_MemberSelfCheckinDoesNotNotify(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	linkedUser := 42
	resolver.On("Resolve", mock.Anything, 1).Return(validResolution(1, &linkedUser), nil)
	repo.On("FindOpenForDay", mock.Anything, 1, now).Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything, now).
		Return(&Session{ID: 12, MemberID: 1, CheckIn: now}, nil)

	memberID := 1
	caller := auth.Identity{UserID: 42, Role: auth.RoleMember, MemberID: &memberID}
	_, err := svc.CheckIn(context.Background(), caller, CheckInRequest{MemberID: 1})
	require.NoError(t, err)

	events.AssertNotCalled(t, "PublishNotification", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_RejectedWhenNotEntitled(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	svc := newTestService(repo, resolver, events, time.Now())

	resolver.On("Resolve", mock.Anything, 2).Return(&entitlement.Resolution{
		Valid:  false,
		Reason: "no active paid membership",
		Member: &member.Member{ID: 2, Status: member.StatusActive},
	}, nil)

	_, err := svc.CheckIn(context.Background(), staffCaller(), CheckInRequest{MemberID: 2})
	require.Error(t, err)

	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, "no active paid membership", apperr.ClientMessage(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_ConflictWhenAlreadyCheckedIn(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	resolver.On("Resolve", mock.Anything, 1).Return(validResolution(1, nil), nil)
	openCheckIn := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	repo.On("FindOpenForDay", mock.Anything, 1, now).
		Return(&Session{ID: 5, MemberID: 1, CheckIn: openCheckIn}, nil)

	_, err := svc.CheckIn(context.Background(), staffCaller(), CheckInRequest{MemberID: 1})
	require.Error(t, err)

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "already checked in today", apperr.ClientMessage(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckIn_TrainerBecomesSessionTrainer(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	trainerID := 3
	caller := auth.Identity{UserID: 60, Name: "Tom", Role: auth.RoleTrainer, TrainerID: &trainerID}

	resolver.On("Resolve", mock.Anything, 1).Return(validResolution(1, nil), nil)
	repo.On("FindOpenForDay", mock.Anything, 1, now).Return(nil, nil)
	repo.On("Create", mock.Anything, CheckInRequest{MemberID: 1, WorkoutType: "Cardio", TrainerID: &trainerID}, now).
		Return(&Session{ID: 13, MemberID: 1, TrainerID: &trainerID, CheckIn: now}, nil)

	session, err := svc.CheckIn(context.Background(), caller, CheckInRequest{MemberID: 1, WorkoutType: "Cardio"})
	require.NoError(t, err)
	require.NotNil(t, session.TrainerID)
	assert.Equal(t, 3, *session.TrainerID)
}

func TestCheckOut_RecordsDuration(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	checkIn := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	repo.On("GetByID", mock.Anything, 10).Return(&Session{ID: 10, MemberID: 1, CheckIn: checkIn}, nil)
	repo.On("Close", mock.Anything, 10, now, 90).Return(true, nil)

	duration, err := svc.CheckOut(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 90, duration)
}

func TestCheckOut_SubMinuteSessionRoundsToZero(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	checkIn := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	now := checkIn.Add(20 * time.Second)
	svc := newTestService(repo, resolver, events, now)

	repo.On("GetByID", mock.Anything, 10).Return(&Session{ID: 10, MemberID: 1, CheckIn: checkIn}, nil)
	repo.On("Close", mock.Anything, 10, now, 0).Return(true, nil)

	duration, err := svc.CheckOut(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, duration)
}

func TestCheckOut_AlreadyClosedReturnsConflict(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	svc := newTestService(repo, resolver, events, time.Now())

	checkIn := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(time.Hour)
	repo.On("GetByID", mock.Anything, 10).Return(&Session{
		ID:       10,
		MemberID: 1,
		CheckIn:  checkIn,
		CheckOut: &checkOut,
	}, nil)

	_, err := svc.CheckOut(context.Background(), 10)
	require.Error(t, err)

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckOut_LostRaceReturnsConflict(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	checkIn := now.Add(-time.Hour)
	repo.On("GetByID", mock.Anything, 10).Return(&Session{ID: 10, MemberID: 1, CheckIn: checkIn}, nil)
	repo.On("Close", mock.Anything, 10, now, 60).Return(false, nil)

	_, err := svc.CheckOut(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCheckOut_UnknownSession(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	svc := newTestService(repo, resolver, events, time.Now())

	repo.On("GetByID", mock.Anything, 404).Return(nil, apperr.NotFound("attendance record not found"))

	_, err := svc.CheckOut(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckOutOpenSessionForMember_NoOpWithoutOpenSession(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	repo.On("FindOpenForDay", mock.Anything, 1, now).Return(nil, nil)

	err := svc.CheckOutOpenSessionForMember(context.Background(), 1)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckOutOpenSessionForMember_ClosesOpenSession(t *testing.T) {
	repo := new(MockRepo)
	resolver := new(MockResolver)
	events := new(MockPublisher)
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	svc := newTestService(repo, resolver, events, now)

	checkIn := time.Date(2024, 6, 1, 17, 15, 0, 0, time.UTC)
	repo.On("FindOpenForDay", mock.Anything, 1, now).
		Return(&Session{ID: 20, MemberID: 1, CheckIn: checkIn}, nil)
	repo.On("Close", mock.Anything, 20, now, 45).Return(true, nil)

	err := svc.CheckOutOpenSessionForMember(context.Background(), 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
