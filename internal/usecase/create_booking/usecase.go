package create_booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
)

// Request запрос на создание бронирования
type Request struct {
	CustomerID  int64
	ProviderID  int64
	ServiceID   int64
	BookingDate time.Time
	TotalPrice  float64
	ServiceName string
	// InstantBooking true для услуг с мгновенным подтверждением:
	// бронирование создается сразу в confirmed, минуя pending
	InstantBooking bool
}

// Response результат создания бронирования
type Response struct {
	Booking *models.BookingResponse
}

// UseCase создание бронирования с денормализацией данных услуги
type UseCase struct {
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute создает бронирование. Начальный статус зависит от режима услуги:
// pending для обычных, confirmed для instant-booking.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d provider=%d service=%d", req.CustomerID, req.ProviderID, req.ServiceID)

	now := uc.timeProvider.Now()
	if err := uc.validateRequest(req, now); err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if req.InstantBooking {
		status = domain.StatusConfirmed
	}

	booking := &domain.Booking{
		CustomerID:  req.CustomerID,
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		BookingDate: req.BookingDate,
		Status:      status,
		TotalPrice:  req.TotalPrice,
		ServiceName: strings.TrimSpace(req.ServiceName),
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create booking for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: booking=%d created with status=%s", created.ID, created.Status)
	return &Response{Booking: models.FromDomainBooking(created)}, nil
}

func (uc *UseCase) validateRequest(req *Request, now time.Time) error {
	if req.CustomerID <= 0 || req.ProviderID <= 0 || req.ServiceID <= 0 {
		return fmt.Errorf("%w: customerID, providerID and serviceID must be positive", ErrInvalidInput)
	}
	if req.CustomerID == req.ProviderID {
		return ErrSameParties
	}
	if !req.BookingDate.After(now) {
		return ErrPastBookingDate
	}
	if req.TotalPrice <= 0 {
		return ErrInvalidPrice
	}
	if strings.TrimSpace(req.ServiceName) == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalidInput)
	}
	return nil
}
