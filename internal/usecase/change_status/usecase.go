package change_status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/penalty"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
)

// Request запрос на интерактивную смену статуса бронирования
type Request struct {
	BookingID    int64
	UserID       int64
	IsAdmin      bool
	TargetStatus string
	Reason       *string
}

// Response результат принятого перехода
type Response struct {
	Booking *models.BookingResponse

	// Информационные суммы штрафов для биллинга (движок деньги не двигает)
	ProviderPenaltyAmount *float64
	CustomerPenaltyAmount *float64
}

// UseCase пайплайн интерактивной смены статуса:
// ownership check → fraud detector → penalty calculator (при отмене) →
// таблица переходов → атомарная запись diff + истории
type UseCase struct {
	bookingRepo  BookingRepository
	fraudDet     FraudDetector
	penaltyCalc  PenaltyCalculator
	securitySink SecuritySink
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	cancellationWindow time.Duration
	cancellationLimit  int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	fraudDet FraudDetector,
	penaltyCalc PenaltyCalculator,
	securitySink SecuritySink,
	notifier Notifier,
	txManager TransactionManager,
	cancellationWindow time.Duration,
	cancellationLimit int,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:        bookingRepo,
		fraudDet:           fraudDet,
		penaltyCalc:        penaltyCalc,
		securitySink:       securitySink,
		notifier:           notifier,
		txManager:          txManager,
		timeProvider:       &RealTimeProvider{},
		logger:             logger,
		cancellationWindow: cancellationWindow,
		cancellationLimit:  cancellationLimit,
	}
}

// Execute выполняет запрос на смену статуса в одной сериализуемой транзакции.
// Конкурентные запросы на одно бронирование сериализуются на уровне БД:
// второй запрос видит уже закоммиченный статус и отклоняется таблицей переходов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ChangeStatus: booking=%d user=%d target=%s", req.BookingID, req.UserID, req.TargetStatus)

	// 1. Валидация входных данных
	target, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("ChangeStatus: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		updated    *domain.Booking
		fraudRes   fraud.Result
		assessment penalty.Assessment
	)

	// 2. Read-modify-write в сериализуемой транзакции
	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Читаем бронирование с блокировкой
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("ChangeStatus: repository error for booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}

		// 2.2. Ownership check до таблицы переходов
		role := domain.ResolveActorRole(booking, req.UserID, req.IsAdmin)
		if role == domain.RoleUnrelated {
			uc.logger.Warn("ChangeStatus: user=%d is not a party to booking=%d", req.UserID, booking.ID)
			return ErrNotAuthorized
		}

		// 2.3. Фрод-сигналы (advisory, кроме одного hard block)
		fraudRes, err = uc.fraudDet.Check(txCtx, fraud.CheckInput{
			Booking:       booking,
			ActorUserID:   req.UserID,
			Role:          role,
			TargetStatus:  target,
			DisputeReason: req.Reason,
			Now:           now,
		})
		if err != nil {
			uc.logger.Error("ChangeStatus: fraud check failed for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: fraud check: %v", ErrInternal, err)
		}
		if fraudRes.Blocked {
			uc.logger.Warn("ChangeStatus: hard fraud block for booking=%d user=%d target=%s",
				booking.ID, req.UserID, target)
			return ErrPastServiceDate
		}

		// 2.4. Отмена: блок по прошедшей дате + расчёт штрафа
		if target == domain.StatusCancelled {
			if booking.IsPastServiceDate(now) {
				uc.logger.Warn("ChangeStatus: booking=%d is past service date, cancel rejected", booking.ID)
				return ErrPastServiceDate
			}

			assessment = uc.penaltyCalc.Assess(booking, role, now)

			// Advisory-сигнал о частых отменах исполнителя (log-only, без блокировки)
			if role == domain.RoleProvider {
				uc.tallyProviderCancellations(txCtx, booking, req.UserID, now, &fraudRes)
			}
		}

		// 2.5. Таблица переходов + ролевые ограничения
		if !domain.CanTransition(booking.Status, target) {
			uc.logger.Warn("ChangeStatus: invalid transition %s → %s for booking=%d",
				booking.Status, target, booking.ID)
			return ErrInvalidTransition
		}
		if !domain.RoleCanSet(role, target) {
			uc.logger.Warn("ChangeStatus: role=%s may not set status=%s for booking=%d",
				role, target, booking.ID)
			return ErrRoleNotPermitted
		}

		// 2.6. Собираем diff и запись истории
		patch := domain.BookingPatch{Status: &target}
		if target == domain.StatusCancelled {
			patch.CancelledBy = &req.UserID
			patch.CancellationTime = &now
			if req.Reason != nil {
				patch.CancellationReason = req.Reason
			}
		}

		entry := domain.StatusHistoryEntry{
			BookingID:      booking.ID,
			PreviousStatus: booking.Status,
			NewStatus:      target,
			Actor:          domain.UserActor(req.UserID),
			Reason:         req.Reason,
		}

		if err := uc.bookingRepo.UpdateWithHistory(txCtx, booking.ID, patch, entry); err != nil {
			uc.logger.Error("ChangeStatus: failed to persist transition for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to persist transition: %v", ErrInternal, err)
		}

		updated = applyPatch(booking, patch, now)
		return nil
	})

	// 3. Security-событие публикуется и для принятых, и для заблокированных запросов
	if len(fraudRes.Signals) > 0 {
		uc.securitySink.Emit(security.Event{
			ActorUserID: req.UserID,
			BookingID:   req.BookingID,
			Flags:       fraudRes.Flags(),
			Timestamp:   now,
			Request: map[string]interface{}{
				"targetStatus": req.TargetStatus,
				"reason":       req.Reason,
			},
		})
	}

	if txErr != nil {
		return nil, txErr
	}

	// 4. Уведомление о штрафе (fire-and-forget, после коммита)
	uc.notifyPenalty(ctx, updated.ID, assessment)

	uc.logger.Info("ChangeStatus: booking=%d transitioned to %s", updated.ID, updated.Status)

	return &Response{
		Booking:               models.FromDomainBooking(updated),
		ProviderPenaltyAmount: assessment.ProviderPenaltyAmount,
		CustomerPenaltyAmount: assessment.CustomerPenaltyAmount,
	}, nil
}

// tallyProviderCancellations advisory-подсчёт отмен исполнителя за окно.
// Ошибка подсчёта не валит запрос: сигнал просто не вычисляется.
func (uc *UseCase) tallyProviderCancellations(ctx context.Context, booking *domain.Booking, userID int64, now time.Time, fraudRes *fraud.Result) {
	since := now.Add(-uc.cancellationWindow)
	count, err := uc.bookingRepo.CountCancellationsByActor(ctx, userID, since)
	if err != nil {
		uc.logger.Error("ChangeStatus: failed to count cancellations for provider=%d: %v", userID, err)
		return
	}
	if count+1 >= uc.cancellationLimit {
		fraudRes.Signals = append(fraudRes.Signals, fraud.SignalFrequentProviderCancellations)
	}
}

func (uc *UseCase) notifyPenalty(ctx context.Context, bookingID int64, assessment penalty.Assessment) {
	if assessment.ProviderPenaltyAmount != nil {
		uc.notifier.PenaltyAssessed(ctx, bookingID, "provider", *assessment.ProviderPenaltyAmount)
	}
	if assessment.CustomerPenaltyAmount != nil {
		uc.notifier.PenaltyAssessed(ctx, bookingID, "customer", *assessment.CustomerPenaltyAmount)
	}
}

// applyPatch возвращает копию бронирования с применённым diff
func applyPatch(booking *domain.Booking, patch domain.BookingPatch, now time.Time) *domain.Booking {
	updated := *booking
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.CancelledBy != nil {
		updated.CancelledBy = patch.CancelledBy
	}
	if patch.CancellationReason != nil {
		updated.CancellationReason = patch.CancellationReason
	}
	if patch.CancellationTime != nil {
		updated.CancellationTime = patch.CancellationTime
	}
	updated.UpdatedAt = now
	return &updated
}
