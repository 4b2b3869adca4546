package auto_complete

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

// serviceName метка сервиса в метриках свипера
const serviceName = "booking-autocomplete"

// Result итог одного прогона свипера
type Result struct {
	Scanned   int
	Completed int
	Failed    int
}

// UseCase свипер автозавершения: бронирования in_progress с одним
// подтверждением, не менявшиеся дольше grace-периода, закрываются системой
type UseCase struct {
	bookingRepo  BookingRepository
	notifier     Notifier
	metrics      MetricsObserver
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	graceHours   int
	reviewWindow time.Duration
}

// NewUseCase создает новый экземпляр use case.
// metrics может быть nil, если метрики выключены конфигурацией.
func NewUseCase(
	bookingRepo BookingRepository,
	notifier Notifier,
	metrics MetricsObserver,
	txManager TransactionManager,
	graceHours int,
	reviewWindow time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		graceHours:   graceHours,
		reviewWindow: reviewWindow,
	}
}

// Execute выполняет один прогон свипера.
// Каждое бронирование обрабатывается в отдельной транзакции: сбой на одном
// не мешает остальным. Прогон прерывается только при ошибках соединения,
// когда продолжать бессмысленно.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now()
	cutoff := now.Add(-time.Duration(uc.graceHours) * time.Hour)

	stalled, err := uc.bookingRepo.ListStalled(ctx, cutoff)
	if err != nil {
		uc.logger.Error("AutoComplete: failed to list stalled bookings: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrListStalled, err)
	}

	result := &Result{Scanned: len(stalled)}
	uc.logger.Info("AutoComplete: sweep started, %d candidates", len(stalled))

	for _, candidate := range stalled {
		completed, err := uc.completeOne(ctx, candidate.ID, now)
		if err != nil {
			result.Failed++
			if isConnectivityError(err) {
				uc.logger.Error("AutoComplete: connectivity failure on booking=%d, aborting sweep: %v", candidate.ID, err)
				uc.observe(result)
				return result, fmt.Errorf("%w: %v", ErrAborted, err)
			}
			uc.logger.Error("AutoComplete: failed to auto-complete booking=%d: %v", candidate.ID, err)
			continue
		}
		if !completed {
			continue
		}
		result.Completed++
		uc.notifier.BookingAutoCompleted(ctx, candidate.ID)
	}

	uc.observe(result)
	uc.logger.Info("AutoComplete: sweep finished, completed=%d failed=%d", result.Completed, result.Failed)
	return result, nil
}

// completeOne автозавершает одно бронирование в собственной транзакции.
// Состояние перечитывается под блокировкой: кандидат мог успеть завершиться
// или уйти в спор между выборкой и обработкой.
func (uc *UseCase) completeOne(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	completed := false
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		if booking.Status != domain.StatusInProgress || !booking.ExactlyOnePartyCompleted() {
			uc.logger.Info("AutoComplete: booking=%d no longer eligible (status=%s), skipping", booking.ID, booking.Status)
			return nil
		}
		if booking.UpdatedAt.After(now.Add(-time.Duration(uc.graceHours) * time.Hour)) {
			return nil
		}

		reviewUntil := now.Add(uc.reviewWindow)
		patch := domain.BookingPatch{
			Status:              ptr.Ptr(domain.StatusCompleted),
			CompletedByCustomer: ptr.Ptr(true),
			CompletedByProvider: ptr.Ptr(true),
			AutoCompletedAt:     &now,
			ReviewEligible:      ptr.Ptr(true),
			ReviewEligibleUntil: &reviewUntil,
		}

		reason := fmt.Sprintf("Auto-completed after %d hours", uc.graceHours)
		entry := domain.StatusHistoryEntry{
			BookingID:      booking.ID,
			PreviousStatus: booking.Status,
			NewStatus:      domain.StatusCompleted,
			Actor:          domain.SystemActor(),
			Reason:         &reason,
		}

		if err := uc.bookingRepo.UpdateWithHistory(txCtx, booking.ID, patch, entry); err != nil {
			return err
		}
		completed = true
		return nil
	})
	return completed, err
}

func (uc *UseCase) observe(result *Result) {
	if uc.metrics != nil {
		uc.metrics.ObserveSweeperRun(serviceName, result.Completed, result.Failed)
	}
}

// isConnectivityError распознает ошибки, при которых весь прогон обречен:
// обрыв соединения с БД в отличие от ошибки по конкретному бронированию
func isConnectivityError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Класс 08 - connection exception
		return pqErr.Code.Class() == "08"
	}

	return false
}
