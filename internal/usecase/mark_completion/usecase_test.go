package mark_completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
)

type fakeBookingRepo struct {
	booking *domain.Booking

	updates        []domain.BookingPatch
	historyUpdates []domain.BookingPatch
	histories      []domain.StatusHistoryEntry
}

func (f *fakeBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBookingRepo) Update(_ context.Context, _ int64, patch domain.BookingPatch) error {
	f.updates = append(f.updates, patch)
	return nil
}

func (f *fakeBookingRepo) UpdateWithHistory(_ context.Context, _ int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error {
	f.historyUpdates = append(f.historyUpdates, patch)
	f.histories = append(f.histories, entry)
	return nil
}

type fakeFraudDetector struct{}

func (fakeFraudDetector) Check(_ context.Context, _ fraud.CheckInput) (fraud.Result, error) {
	return fraud.Result{}, nil
}

type fakeSecuritySink struct {
	events []security.Event
}

func (f *fakeSecuritySink) Emit(event security.Event) {
	f.events = append(f.events, event)
}

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func inProgressBooking(customerDone, providerDone bool) *domain.Booking {
	return &domain.Booking{
		ID:                  7,
		CustomerID:          10,
		ProviderID:          20,
		Status:              domain.StatusInProgress,
		BookingDate:         testNow.Add(-24 * time.Hour),
		TotalPrice:          150,
		CompletedByCustomer: customerDone,
		CompletedByProvider: providerDone,
	}
}

func newTestUseCase(repo *fakeBookingRepo, sink *fakeSecuritySink) *UseCase {
	uc := NewUseCase(repo, fakeFraudDetector{}, sink, passthroughTxManager{}, 14*24*time.Hour, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecuteFirstMarkKeepsBookingInProgress(t *testing.T) {
	repo := &fakeBookingRepo{booking: inProgressBooking(false, false)}
	uc := newTestUseCase(repo, &fakeSecuritySink{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 10})

	require.NoError(t, err)
	assert.False(t, resp.Completed)
	assert.Equal(t, "in_progress", resp.Booking.Status)
	assert.True(t, resp.Booking.CompletedByCustomer)
	assert.False(t, resp.Booking.CompletedByProvider)

	// Один флаг: статус не меняется, истории нет
	require.Len(t, repo.updates, 1)
	assert.Empty(t, repo.histories)
	assert.Nil(t, repo.updates[0].Status)
}

func TestExecuteSecondMarkCompletesBooking(t *testing.T) {
	repo := &fakeBookingRepo{booking: inProgressBooking(true, false)}
	uc := newTestUseCase(repo, &fakeSecuritySink{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 20})

	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, "completed", resp.Booking.Status)
	assert.True(t, resp.Booking.ReviewEligible)
	require.NotNil(t, resp.Booking.ReviewEligibleUntil)

	// Ровно один переход с одной записью истории
	require.Len(t, repo.historyUpdates, 1)
	require.Len(t, repo.histories, 1)
	assert.Empty(t, repo.updates)

	entry := repo.histories[0]
	assert.Equal(t, domain.StatusInProgress, entry.PreviousStatus)
	assert.Equal(t, domain.StatusCompleted, entry.NewStatus)
	assert.Equal(t, int64(20), entry.Actor.UserID)
	assert.False(t, entry.Actor.System)

	patch := repo.historyUpdates[0]
	require.NotNil(t, patch.ReviewEligibleUntil)
	assert.Equal(t, testNow.Add(14*24*time.Hour), *patch.ReviewEligibleUntil)
}

func TestExecuteRepeatMarkIsIdempotent(t *testing.T) {
	repo := &fakeBookingRepo{booking: inProgressBooking(true, false)}
	uc := newTestUseCase(repo, &fakeSecuritySink{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 10})

	require.NoError(t, err)
	assert.False(t, resp.Completed)

	// Повторная отметка своей стороной ничего не пишет
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.historyUpdates)
	assert.Empty(t, repo.histories)
}

func TestExecuteNonPartyRejected(t *testing.T) {
	repo := &fakeBookingRepo{booking: inProgressBooking(false, false)}
	uc := newTestUseCase(repo, &fakeSecuritySink{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 999})

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, repo.updates)
}

func TestExecuteWrongStatusRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusDisputed,
	} {
		booking := inProgressBooking(false, false)
		booking.Status = status
		repo := &fakeBookingRepo{booking: booking}
		uc := newTestUseCase(repo, &fakeSecuritySink{})

		_, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 10})
		assert.ErrorIsf(t, err, ErrInvalidState, "status=%s", status)
	}
}
