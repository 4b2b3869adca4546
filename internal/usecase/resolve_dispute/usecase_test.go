package resolve_dispute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

type fakeBookingRepo struct {
	booking    *domain.Booking
	gotPatch   *domain.BookingPatch
	gotHistory *domain.StatusHistoryEntry
}

func (f *fakeBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBookingRepo) UpdateWithHistory(_ context.Context, _ int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error {
	f.gotPatch = &patch
	f.gotHistory = &entry
	return nil
}

type fakeNotifier struct {
	resolved []string
}

func (f *fakeNotifier) DisputeResolved(_ context.Context, _ int64, resolution string) {
	f.resolved = append(f.resolved, resolution)
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

func disputedBooking() *domain.Booking {
	reason := "работата не е завършена"
	return &domain.Booking{
		ID:            11,
		CustomerID:    10,
		ProviderID:    20,
		Status:        domain.StatusDisputed,
		BookingDate:   testNow.Add(-72 * time.Hour),
		TotalPrice:    120,
		HasDispute:    true,
		DisputeReason: &reason,
		DisputeStatus: ptr.Ptr(domain.DisputeOpen),
	}
}

func newTestUseCase(repo *fakeBookingRepo, notif *fakeNotifier) *UseCase {
	uc := NewUseCase(repo, notif, passthroughTxManager{}, 14*24*time.Hour, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecuteResolvedForCustomerCompletesBooking(t *testing.T) {
	repo := &fakeBookingRepo{booking: disputedBooking()}
	notif := &fakeNotifier{}
	uc := newTestUseCase(repo, notif)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "resolved_for_customer",
	})

	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Booking.Status)
	assert.True(t, resp.Booking.ReviewEligible)
	require.NotNil(t, resp.Booking.ReviewEligibleUntil)
	assert.Equal(t, testNow.Add(14*24*time.Hour).Format(time.RFC3339), *resp.Booking.ReviewEligibleUntil)

	require.NotNil(t, repo.gotPatch)
	require.NotNil(t, repo.gotPatch.Status)
	assert.Equal(t, domain.StatusCompleted, *repo.gotPatch.Status)
	require.NotNil(t, repo.gotPatch.DisputeStatus)
	assert.Equal(t, domain.DisputeResolvedForCustomer, *repo.gotPatch.DisputeStatus)
	require.NotNil(t, repo.gotPatch.DisputeResolvedAt)
	assert.Equal(t, testNow, *repo.gotPatch.DisputeResolvedAt)

	require.NotNil(t, repo.gotHistory)
	assert.Equal(t, domain.StatusDisputed, repo.gotHistory.PreviousStatus)
	assert.Equal(t, domain.StatusCompleted, repo.gotHistory.NewStatus)
	assert.Equal(t, int64(99), repo.gotHistory.Actor.UserID)

	assert.Equal(t, []string{"resolved_for_customer"}, notif.resolved)
}

func TestExecuteResolvedForProviderReopensReviewWindow(t *testing.T) {
	repo := &fakeBookingRepo{booking: disputedBooking()}
	uc := newTestUseCase(repo, &fakeNotifier{})

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "resolved_for_provider", Notes: "изпълнителят е представил снимки",
	})

	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Booking.Status)
	assert.True(t, resp.Booking.ReviewEligible)

	require.NotNil(t, repo.gotHistory.Reason)
	assert.Equal(t, "resolved_for_provider: изпълнителят е представил снимки", *repo.gotHistory.Reason)
}

func TestExecuteClosedNoResolutionCancelsWithoutReview(t *testing.T) {
	repo := &fakeBookingRepo{booking: disputedBooking()}
	notif := &fakeNotifier{}
	uc := newTestUseCase(repo, notif)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "closed_no_resolution",
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Booking.Status)
	assert.False(t, resp.Booking.ReviewEligible)
	assert.Nil(t, resp.Booking.ReviewEligibleUntil)

	require.NotNil(t, repo.gotPatch.ReviewEligible)
	assert.False(t, *repo.gotPatch.ReviewEligible)
	assert.Nil(t, repo.gotPatch.ReviewEligibleUntil)

	assert.Equal(t, []string{"closed_no_resolution"}, notif.resolved)
}

func TestExecuteKeepOpenRecordsDecisionWithoutTransition(t *testing.T) {
	repo := &fakeBookingRepo{booking: disputedBooking()}
	notif := &fakeNotifier{}
	uc := newTestUseCase(repo, notif)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "open", Notes: "чакаме документи",
	})

	require.NoError(t, err)
	assert.Equal(t, "disputed", resp.Booking.Status)
	assert.True(t, resp.Booking.HasDispute)

	// Запись истории без смены статуса
	require.NotNil(t, repo.gotHistory)
	assert.Equal(t, domain.StatusDisputed, repo.gotHistory.PreviousStatus)
	assert.Equal(t, domain.StatusDisputed, repo.gotHistory.NewStatus)
	require.NotNil(t, repo.gotHistory.Reason)
	assert.Equal(t, "dispute reviewed and kept open: чакаме документи", *repo.gotHistory.Reason)

	// Уведомление уходит только при финальной резолюции
	assert.Empty(t, notif.resolved)
}

func TestExecuteNoActiveDisputeRejected(t *testing.T) {
	booking := disputedBooking()
	booking.Status = domain.StatusCompleted
	repo := &fakeBookingRepo{booking: booking}
	uc := newTestUseCase(repo, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "resolved_for_customer",
	})

	assert.ErrorIs(t, err, ErrNoActiveDispute)
	assert.Nil(t, repo.gotPatch)
}

func TestExecuteUnknownResolutionRejected(t *testing.T) {
	repo := &fakeBookingRepo{booking: disputedBooking()}
	uc := newTestUseCase(repo, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 11, AdminUserID: 99, Resolution: "split_the_difference",
	})

	assert.ErrorIs(t, err, ErrInvalidResolution)
	assert.Nil(t, repo.gotPatch)
}
