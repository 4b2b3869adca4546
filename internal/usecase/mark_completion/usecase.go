package mark_completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

// bothCompleteReason текст записи истории при завершении обеими сторонами
const bothCompleteReason = "both parties marked as complete"

// Request запрос на отметку завершения своей стороной
type Request struct {
	BookingID int64
	UserID    int64
}

// Response результат: обновлённое бронирование и признак полного завершения
type Response struct {
	Booking   *models.BookingResponse
	Completed bool // обе стороны подтвердили завершение
}

// UseCase двухфазное подтверждение завершения: каждая сторона независимо
// ставит свой флаг; когда после применения флага оба true, бронирование
// атомарно переводится в completed и открывается окно отзыва
type UseCase struct {
	bookingRepo  BookingRepository
	fraudDet     FraudDetector
	securitySink SecuritySink
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	reviewWindow time.Duration
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fraudDet FraudDetector,
	securitySink SecuritySink,
	txManager TransactionManager,
	reviewWindow time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		fraudDet:     fraudDet,
		securitySink: securitySink,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		reviewWindow: reviewWindow,
	}
}

// Execute отмечает завершение стороной актора.
// Сериализуемая транзакция гарантирует, что при двух конкурентных запросах
// ровно один увидит "оба флага true" и выполнит единственный переход в
// completed с одной записью истории.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("MarkCompletion: booking=%d user=%d", req.BookingID, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
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
			uc.logger.Error("MarkCompletion: repository error for booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}

		// Администратор флаги сторон не ставит: роль выводится только из владения
		role := domain.ResolveActorRole(booking, req.UserID, false)
		if !role.IsParty() {
			uc.logger.Warn("MarkCompletion: user=%d is not a party to booking=%d", req.UserID, booking.ID)
			return ErrNotAuthorized
		}

		if booking.Status != domain.StatusInProgress {
			uc.logger.Warn("MarkCompletion: booking=%d has status=%s, expected in_progress",
				booking.ID, booking.Status)
			return ErrInvalidState
		}

		fraudRes, err = uc.fraudDet.Check(txCtx, fraud.CheckInput{
			Booking:     booking,
			ActorUserID: req.UserID,
			Role:        role,
			Now:         now,
		})
		if err != nil {
			uc.logger.Error("MarkCompletion: fraud check failed for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: fraud check: %v", ErrInternal, err)
		}

		updated, err = uc.applyCompletionMark(txCtx, booking, role, req.UserID, now)
		return err
	})

	if len(fraudRes.Signals) > 0 {
		uc.securitySink.Emit(security.Event{
			ActorUserID: req.UserID,
			BookingID:   req.BookingID,
			Flags:       fraudRes.Flags(),
			Timestamp:   now,
			Request:     map[string]interface{}{"operation": "mark_completion"},
		})
	}

	if txErr != nil {
		return nil, txErr
	}

	completed := updated.Status == domain.StatusCompleted
	uc.logger.Info("MarkCompletion: booking=%d marked by %d, completed=%v", updated.ID, req.UserID, completed)

	return &Response{
		Booking:   models.FromDomainBooking(updated),
		Completed: completed,
	}, nil
}

// applyCompletionMark применяет флаг стороны и, если обе стороны подтвердили,
// атомарно закрывает бронирование
func (uc *UseCase) applyCompletionMark(ctx context.Context, booking *domain.Booking, role domain.ActorRole, userID int64, now time.Time) (*domain.Booking, error) {
	updated := *booking

	switch role {
	case domain.RoleCustomer:
		if booking.CompletedByCustomer {
			// Повторная отметка своей стороной - идемпотентный no-op
			return &updated, nil
		}
		updated.CompletedByCustomer = true
	case domain.RoleProvider:
		if booking.CompletedByProvider {
			return &updated, nil
		}
		updated.CompletedByProvider = true
	}

	patch := domain.BookingPatch{
		CompletedByCustomer: &updated.CompletedByCustomer,
		CompletedByProvider: &updated.CompletedByProvider,
	}

	// Только одна сторона подтвердила: статус не меняется, окно отзыва не открывается
	if !updated.BothPartiesCompleted() {
		if err := uc.bookingRepo.Update(ctx, booking.ID, patch); err != nil {
			uc.logger.Error("MarkCompletion: failed to persist flag for booking=%d: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: failed to persist completion flag: %v", ErrInternal, err)
		}
		updated.UpdatedAt = now
		return &updated, nil
	}

	// Обе стороны подтвердили: завершаем и открываем окно отзыва
	reviewUntil := now.Add(uc.reviewWindow)
	patch.Status = ptr.Ptr(domain.StatusCompleted)
	patch.ReviewEligible = ptr.Ptr(true)
	patch.ReviewEligibleUntil = &reviewUntil

	entry := domain.StatusHistoryEntry{
		BookingID:      booking.ID,
		PreviousStatus: booking.Status,
		NewStatus:      domain.StatusCompleted,
		Actor:          domain.UserActor(userID),
		Reason:         ptr.Ptr(bothCompleteReason),
	}

	if err := uc.bookingRepo.UpdateWithHistory(ctx, booking.ID, patch, entry); err != nil {
		uc.logger.Error("MarkCompletion: failed to complete booking=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to complete booking: %v", ErrInternal, err)
	}

	updated.Status = domain.StatusCompleted
	updated.ReviewEligible = true
	updated.ReviewEligibleUntil = &reviewUntil
	updated.UpdatedAt = now
	return &updated, nil
}
