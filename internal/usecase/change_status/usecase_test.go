package change_status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/penalty"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

// Фейки слоя хранения и сервисов

type fakeBookingRepo struct {
	booking    *domain.Booking
	getErr     error
	updateErr  error
	cancelCnt  int
	cancelErr  error
	gotPatch   *domain.BookingPatch
	gotHistory *domain.StatusHistoryEntry
}

func (f *fakeBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	cp := *f.booking
	return &cp, nil
}

func (f *fakeBookingRepo) UpdateWithHistory(_ context.Context, _ int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.gotPatch = &patch
	f.gotHistory = &entry
	return nil
}

func (f *fakeBookingRepo) CountCancellationsByActor(_ context.Context, _ int64, _ time.Time) (int, error) {
	return f.cancelCnt, f.cancelErr
}

type fakeFraudDetector struct {
	result fraud.Result
	got    *fraud.CheckInput
}

func (f *fakeFraudDetector) Check(_ context.Context, in fraud.CheckInput) (fraud.Result, error) {
	f.got = &in
	return f.result, nil
}

type fakeSecuritySink struct {
	events []security.Event
}

func (f *fakeSecuritySink) Emit(event security.Event) {
	f.events = append(f.events, event)
}

type fakeNotifier struct {
	penalties []float64
	parties   []string
}

func (f *fakeNotifier) PenaltyAssessed(_ context.Context, _ int64, party string, amount float64) {
	f.parties = append(f.parties, party)
	f.penalties = append(f.penalties, amount)
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

func testBooking(status domain.BookingStatus, bookingDate time.Time) *domain.Booking {
	return &domain.Booking{
		ID:          42,
		CustomerID:  10,
		ProviderID:  20,
		ServiceID:   5,
		BookingDate: bookingDate,
		Status:      status,
		TotalPrice:  100,
		ServiceName: "Ремонт на баня",
	}
}

func newTestUseCase(repo *fakeBookingRepo, det *fakeFraudDetector, sink *fakeSecuritySink, notif *fakeNotifier) *UseCase {
	uc := NewUseCase(
		repo,
		det,
		penalty.NewCalculator(24*time.Hour),
		sink,
		notif,
		passthroughTxManager{},
		30*24*time.Hour,
		5,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecuteCustomerLateCancellation(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed, testNow.Add(10*time.Hour))}
	det := &fakeFraudDetector{}
	sink := &fakeSecuritySink{}
	notif := &fakeNotifier{}
	uc := newTestUseCase(repo, det, sink, notif)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID:    42,
		UserID:       10,
		TargetStatus: "cancelled",
		Reason:       ptr.Ptr("семейни причини"),
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Booking.Status)

	// Поздняя отмена клиентом: 10% от 100
	require.NotNil(t, resp.CustomerPenaltyAmount)
	assert.InDelta(t, 10.00, *resp.CustomerPenaltyAmount, 0.001)
	assert.Nil(t, resp.ProviderPenaltyAmount)

	// Diff содержит поля отмены
	require.NotNil(t, repo.gotPatch)
	require.NotNil(t, repo.gotPatch.CancelledBy)
	assert.Equal(t, int64(10), *repo.gotPatch.CancelledBy)
	assert.NotNil(t, repo.gotPatch.CancellationTime)
	require.NotNil(t, repo.gotPatch.CancellationReason)
	assert.Equal(t, "семейни причини", *repo.gotPatch.CancellationReason)

	// История авторизована пользователем, не системой
	require.NotNil(t, repo.gotHistory)
	assert.Equal(t, domain.StatusConfirmed, repo.gotHistory.PreviousStatus)
	assert.Equal(t, domain.StatusCancelled, repo.gotHistory.NewStatus)
	assert.False(t, repo.gotHistory.Actor.System)
	assert.Equal(t, int64(10), repo.gotHistory.Actor.UserID)

	// Уведомление о штрафе ушло в биллинг
	require.Len(t, notif.penalties, 1)
	assert.Equal(t, "customer", notif.parties[0])
	assert.InDelta(t, 10.00, notif.penalties[0], 0.001)
}

func TestExecuteEarlyCancellationWithoutPenalty(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusPending, testNow.Add(72*time.Hour))}
	uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 10, TargetStatus: "cancelled",
	})

	require.NoError(t, err)
	assert.Nil(t, resp.CustomerPenaltyAmount)
	assert.Nil(t, resp.ProviderPenaltyAmount)
}

func TestExecuteUnrelatedActorRejected(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed, testNow.Add(time.Hour))}
	uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 777, TargetStatus: "cancelled",
	})

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Nil(t, repo.gotPatch)
}

func TestExecuteTerminalStatusRejected(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusCancelled, testNow.Add(time.Hour))}
	uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 20, TargetStatus: "confirmed",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecuteRoleRestrictions(t *testing.T) {
	t.Run("customer cannot confirm", func(t *testing.T) {
		repo := &fakeBookingRepo{booking: testBooking(domain.StatusPending, testNow.Add(time.Hour))}
		uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 42, UserID: 10, TargetStatus: "confirmed",
		})

		assert.ErrorIs(t, err, ErrRoleNotPermitted)
	})

	t.Run("provider confirms pending booking", func(t *testing.T) {
		repo := &fakeBookingRepo{booking: testBooking(domain.StatusPending, testNow.Add(time.Hour))}
		uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 42, UserID: 20, TargetStatus: "confirmed",
		})

		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Booking.Status)
	})

	t.Run("admin bypasses role restriction", func(t *testing.T) {
		repo := &fakeBookingRepo{booking: testBooking(domain.StatusPending, testNow.Add(time.Hour))}
		uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

		resp, err := uc.Execute(context.Background(), &Request{
			BookingID: 42, UserID: 999, IsAdmin: true, TargetStatus: "confirmed",
		})

		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Booking.Status)
	})
}

func TestExecutePastServiceDateCancelRejected(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed, testNow.Add(-time.Hour))}
	uc := newTestUseCase(repo, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 10, TargetStatus: "cancelled",
	})

	assert.ErrorIs(t, err, ErrPastServiceDate)
	assert.Nil(t, repo.gotPatch)
}

func TestExecuteFraudBlockStillEmitsSecurityEvent(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(domain.StatusConfirmed, testNow.Add(-time.Hour))}
	det := &fakeFraudDetector{result: fraud.Result{
		Signals: []fraud.Signal{fraud.SignalPostServiceCancellation},
		Blocked: true,
	}}
	sink := &fakeSecuritySink{}
	uc := newTestUseCase(repo, det, sink, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 20, TargetStatus: "cancelled",
	})

	assert.ErrorIs(t, err, ErrPastServiceDate)

	// Событие публикуется даже когда запрос жёстко отклонён
	require.Len(t, sink.events, 1)
	assert.Contains(t, sink.events[0].Flags, string(fraud.SignalPostServiceCancellation))
	assert.Equal(t, int64(20), sink.events[0].ActorUserID)
}

func TestExecuteDedicatedFlowStatusesRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{booking: testBooking(domain.StatusInProgress, testNow)}, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	for _, target := range []string{"completed", "disputed"} {
		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 42, UserID: 10, TargetStatus: target,
		})
		assert.ErrorIsf(t, err, ErrDedicatedFlow, "target=%s", target)
	}
}

func TestExecuteUnknownStatusRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{booking: testBooking(domain.StatusPending, testNow)}, &fakeFraudDetector{}, &fakeSecuritySink{}, &fakeNotifier{})

	for _, target := range []string{"", "pending", "unknown"} {
		_, err := uc.Execute(context.Background(), &Request{
			BookingID: 42, UserID: 10, TargetStatus: target,
		})
		assert.ErrorIsf(t, err, ErrInvalidStatus, "target=%q", target)
	}
}

func TestExecuteFrequentProviderCancellationSignal(t *testing.T) {
	repo := &fakeBookingRepo{
		booking:   testBooking(domain.StatusConfirmed, testNow.Add(48*time.Hour)),
		cancelCnt: 4, // +1 текущая = лимит 5
	}
	sink := &fakeSecuritySink{}
	uc := newTestUseCase(repo, &fakeFraudDetector{}, sink, &fakeNotifier{})

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID: 42, UserID: 20, TargetStatus: "cancelled",
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Booking.Status)

	// Сигнал advisory: отмена прошла, событие зафиксировано
	require.Len(t, sink.events, 1)
	assert.Contains(t, sink.events[0].Flags, string(fraud.SignalFrequentProviderCancellations))
}
