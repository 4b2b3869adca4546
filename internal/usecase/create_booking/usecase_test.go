package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

type fakeBookingRepo struct {
	created *domain.Booking
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	cp := *booking
	cp.ID = 1
	cp.CreatedAt = time.Now()
	f.created = &cp
	return &cp, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validRequest() *Request {
	return &Request{
		CustomerID:  10,
		ProviderID:  20,
		ServiceID:   3,
		BookingDate: testNow.Add(48 * time.Hour),
		TotalPrice:  150,
		ServiceName: "Почистване на дом",
	}
}

func newTestUseCase(repo *fakeBookingRepo) *UseCase {
	uc := NewUseCase(repo, nopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecuteCreatesPendingBooking(t *testing.T) {
	repo := &fakeBookingRepo{}
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Booking.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, domain.StatusPending, repo.created.Status)
	assert.Equal(t, "Почистване на дом", repo.created.ServiceName)
}

func TestExecuteInstantBookingStartsConfirmed(t *testing.T) {
	repo := &fakeBookingRepo{}
	uc := newTestUseCase(repo)

	req := validRequest()
	req.InstantBooking = true
	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Booking.Status)
}

func TestExecutePastBookingDateRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{})

	req := validRequest()
	req.BookingDate = testNow.Add(-time.Hour)
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPastBookingDate)

	// Дата ровно "сейчас" тоже не годится
	req.BookingDate = testNow
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPastBookingDate)
}

func TestExecuteSamePartiesRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{})

	req := validRequest()
	req.ProviderID = req.CustomerID
	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrSameParties)
}

func TestExecuteInvalidPriceRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{})

	for _, price := range []float64{0, -50} {
		req := validRequest()
		req.TotalPrice = price
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIsf(t, err, ErrInvalidPrice, "price=%v", price)
	}
}

func TestExecuteBlankServiceNameRejected(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{})

	req := validRequest()
	req.ServiceName = "   "
	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
