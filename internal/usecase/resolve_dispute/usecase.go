package resolve_dispute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/pkg/ptr"
)

// keptOpenReason текст записи истории, когда администратор оставил спор открытым
const keptOpenReason = "dispute reviewed and kept open"

// Request запрос на разрешение спора администратором
type Request struct {
	BookingID   int64
	AdminUserID int64
	Resolution  string
	Notes       string
}

// Response результат разрешения спора
type Response struct {
	Booking *models.BookingResponse
}

// UseCase разрешение спора администратором: переводит disputed в целевой
// статус согласно резолюции либо оставляет спор открытым
type UseCase struct {
	bookingRepo  BookingRepository
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	reviewWindow time.Duration
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	notifier Notifier,
	txManager TransactionManager,
	reviewWindow time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		reviewWindow: reviewWindow,
	}
}

// Execute применяет резолюцию администратора к спору.
// resolved_for_customer и resolved_for_provider закрывают бронирование в
// completed и заново открывают окно отзыва; closed_no_resolution отменяет
// бронирование без права на отзыв; open фиксируется в истории как осознанное
// решение оставить спор открытым.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ResolveDispute: booking=%d admin=%d resolution=%s", req.BookingID, req.AdminUserID, req.Resolution)

	if req.BookingID <= 0 || req.AdminUserID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and adminUserID must be positive", ErrInvalidInput)
	}

	resolution, keepOpen, err := parseResolution(req.Resolution)
	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	var updated *domain.Booking

	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("ResolveDispute: repository error for booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}

		if !booking.HasDispute || booking.Status != domain.StatusDisputed {
			uc.logger.Warn("ResolveDispute: booking=%d has no active dispute (status=%s, hasDispute=%v)",
				booking.ID, booking.Status, booking.HasDispute)
			return ErrNoActiveDispute
		}

		if keepOpen {
			updated, err = uc.recordKeptOpen(txCtx, booking, req, now)
			return err
		}
		updated, err = uc.applyResolution(txCtx, booking, req, resolution, now)
		return err
	})

	if txErr != nil {
		return nil, txErr
	}

	if !keepOpen {
		uc.notifier.DisputeResolved(ctx, updated.ID, string(resolution))
	}

	uc.logger.Info("ResolveDispute: booking=%d resolved as %s by admin=%d", updated.ID, req.Resolution, req.AdminUserID)
	return &Response{Booking: models.FromDomainBooking(updated)}, nil
}

// recordKeptOpen оставляет спор открытым, но фиксирует факт рассмотрения в истории
func (uc *UseCase) recordKeptOpen(ctx context.Context, booking *domain.Booking, req *Request, now time.Time) (*domain.Booking, error) {
	reason := keptOpenReason
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		reason = fmt.Sprintf("%s: %s", keptOpenReason, notes)
	}

	entry := domain.StatusHistoryEntry{
		BookingID:      booking.ID,
		PreviousStatus: booking.Status,
		NewStatus:      booking.Status,
		Actor:          domain.UserActor(req.AdminUserID),
		Reason:         &reason,
	}

	// Пустой patch не проходит через Update, поэтому переустанавливаем dispute_status
	patch := domain.BookingPatch{DisputeStatus: ptr.Ptr(domain.DisputeOpen)}
	if err := uc.bookingRepo.UpdateWithHistory(ctx, booking.ID, patch, entry); err != nil {
		uc.logger.Error("ResolveDispute: failed to record kept-open decision for booking=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to record decision: %v", ErrInternal, err)
	}

	after := *booking
	after.UpdatedAt = now
	return &after, nil
}

// applyResolution закрывает спор с финальной резолюцией
func (uc *UseCase) applyResolution(ctx context.Context, booking *domain.Booking, req *Request, resolution domain.DisputeStatus, now time.Time) (*domain.Booking, error) {
	target := domain.StatusCompleted
	reviewEligible := true
	if resolution == domain.DisputeClosedNoResolution {
		target = domain.StatusCancelled
		reviewEligible = false
	}

	patch := domain.BookingPatch{
		Status:            ptr.Ptr(target),
		DisputeStatus:     &resolution,
		DisputeResolvedAt: &now,
		ReviewEligible:    &reviewEligible,
	}

	var reviewUntil *time.Time
	if reviewEligible {
		until := now.Add(uc.reviewWindow)
		reviewUntil = &until
		patch.ReviewEligibleUntil = reviewUntil
	}

	reason := string(resolution)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		reason = fmt.Sprintf("%s: %s", resolution, notes)
	}

	entry := domain.StatusHistoryEntry{
		BookingID:      booking.ID,
		PreviousStatus: booking.Status,
		NewStatus:      target,
		Actor:          domain.UserActor(req.AdminUserID),
		Reason:         &reason,
	}

	if err := uc.bookingRepo.UpdateWithHistory(ctx, booking.ID, patch, entry); err != nil {
		uc.logger.Error("ResolveDispute: failed to resolve dispute for booking=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to resolve dispute: %v", ErrInternal, err)
	}

	after := *booking
	after.Status = target
	after.DisputeStatus = &resolution
	after.DisputeResolvedAt = &now
	after.ReviewEligible = reviewEligible
	after.ReviewEligibleUntil = reviewUntil
	after.UpdatedAt = now
	return &after, nil
}

// parseResolution разбирает резолюцию администратора.
// Значение open не ошибка: это явное решение оставить спор открытым.
func parseResolution(raw string) (domain.DisputeStatus, bool, error) {
	status, ok := domain.ParseDisputeStatus(strings.TrimSpace(raw))
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidResolution, raw)
	}
	if status == domain.DisputeOpen {
		return status, true, nil
	}
	return status, false, nil
}
