package create_dispute

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

// Request запрос на открытие спора по бронированию
type Request struct {
	BookingID int64
	UserID    int64
	Reason    string
}

// Response результат открытия спора
type Response struct {
	Booking *models.BookingResponse
}

// UseCase открытие спора: переводит бронирование в disputed, выставляет
// монотонный hasDispute и фиксирует причину
type UseCase struct {
	bookingRepo  BookingRepository
	fraudDet     FraudDetector
	securitySink SecuritySink
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fraudDet FraudDetector,
	securitySink SecuritySink,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		fraudDet:     fraudDet,
		securitySink: securitySink,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute открывает спор по бронированию.
// Фрод-проверка выполняется до жёсткой валидации причины: попытка открыть
// спор с пустой причиной по завершённому бронированию всё равно должна
// оставить сигнал potential_review_avoidance.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateDispute: booking=%d user=%d", req.BookingID, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > domain.MaxDisputeReasonLength {
		return nil, fmt.Errorf("%w: dispute reason exceeds %d characters", ErrInvalidInput, domain.MaxDisputeReasonLength)
	}

	now := uc.timeProvider.Now()

	var (
		updated  *domain.Booking
		fraudRes fraud.Result
	)

	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("CreateDispute: repository error for booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}

		role := domain.ResolveActorRole(booking, req.UserID, false)
		if !role.IsParty() {
			uc.logger.Warn("CreateDispute: user=%d is not a party to booking=%d", req.UserID, booking.ID)
			return ErrNotAuthorized
		}

		fraudRes, err = uc.fraudDet.Check(txCtx, fraud.CheckInput{
			Booking:       booking,
			ActorUserID:   req.UserID,
			Role:          role,
			TargetStatus:  domain.StatusDisputed,
			DisputeReason: &reason,
			Now:           now,
		})
		if err != nil {
			uc.logger.Error("CreateDispute: fraud check failed for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: fraud check: %v", ErrInternal, err)
		}

		if reason == "" {
			return ErrReasonRequired
		}
		if booking.HasDispute {
			return ErrDisputeAlreadyOpen
		}
		if booking.Status != domain.StatusCompleted && booking.Status != domain.StatusInProgress {
			uc.logger.Warn("CreateDispute: booking=%d has status=%s, dispute not allowed", booking.ID, booking.Status)
			return ErrInvalidState
		}

		// Право на отзыв приостанавливается на время спора: резолюция
		// вычислит его заново
		patch := domain.BookingPatch{
			Status:                   ptr.Ptr(domain.StatusDisputed),
			HasDispute:               ptr.Ptr(true),
			DisputeReason:            &reason,
			DisputeStatus:            ptr.Ptr(domain.DisputeOpen),
			ReviewEligible:           ptr.Ptr(false),
			ClearReviewEligibleUntil: true,
		}
		entry := domain.StatusHistoryEntry{
			BookingID:      booking.ID,
			PreviousStatus: booking.Status,
			NewStatus:      domain.StatusDisputed,
			Actor:          domain.UserActor(req.UserID),
			Reason:         &reason,
		}

		if err := uc.bookingRepo.UpdateWithHistory(txCtx, booking.ID, patch, entry); err != nil {
			uc.logger.Error("CreateDispute: failed to persist dispute for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to persist dispute: %v", ErrInternal, err)
		}

		after := *booking
		after.Status = domain.StatusDisputed
		after.HasDispute = true
		after.DisputeReason = &reason
		after.DisputeStatus = ptr.Ptr(domain.DisputeOpen)
		after.ReviewEligible = false
		after.ReviewEligibleUntil = nil
		after.UpdatedAt = now
		updated = &after
		return nil
	})

	if len(fraudRes.Signals) > 0 {
		uc.securitySink.Emit(security.Event{
			ActorUserID: req.UserID,
			BookingID:   req.BookingID,
			Flags:       fraudRes.Flags(),
			Timestamp:   now,
			Request:     map[string]interface{}{"operation": "create_dispute", "reason": reason},
		})
	}

	if txErr != nil {
		return nil, txErr
	}

	uc.notifier.DisputeOpened(ctx, updated.ID, reason)

	uc.logger.Info("CreateDispute: dispute opened for booking=%d by user=%d", updated.ID, req.UserID)
	return &Response{Booking: models.FromDomainBooking(updated)}, nil
}
