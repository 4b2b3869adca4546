package change_status

import (
	"fmt"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// validateRequest валидирует входные данные и возвращает целевой статус
func validateRequest(req *Request) (domain.BookingStatus, error) {
	if req.BookingID <= 0 {
		return "", fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return "", fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	target, ok := domain.ParseBookingStatus(req.TargetStatus)
	if !ok {
		return "", ErrInvalidStatus
	}

	// pending назначается только при создании
	if target == domain.StatusPending {
		return "", ErrInvalidStatus
	}

	// completed и disputed управляются своими операциями:
	// completion reconciler и dispute flow
	if target == domain.StatusCompleted || target == domain.StatusDisputed {
		return "", ErrDedicatedFlow
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return "", fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return target, nil
}
