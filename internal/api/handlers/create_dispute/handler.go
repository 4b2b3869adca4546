package create_dispute

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_dispute"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgReasonRequired     = "причина спора обязательна"
	msgInvalidState       = "спор нельзя открыть в текущем статусе"
	msgDisputeExists      = "по бронированию уже открыт спор"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase CreateDisputeUseCase
	logger  Logger
}

func NewHandler(useCase CreateDisputeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/dispute
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/dispute - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CreateDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/dispute - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &create_dispute.Request{
		BookingID: bookingID,
		UserID:    userID,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, create_dispute.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/dispute - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, create_dispute.ErrNotAuthorized):
			h.logger.Warn("POST /bookings/{id}/dispute - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, create_dispute.ErrReasonRequired):
			h.logger.Warn("POST /bookings/{id}/dispute - Missing reason: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgReasonRequired)

		case errors.Is(err, create_dispute.ErrInvalidState):
			h.logger.Warn("POST /bookings/{id}/dispute - Invalid state: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgInvalidState)

		case errors.Is(err, create_dispute.ErrDisputeAlreadyOpen):
			h.logger.Warn("POST /bookings/{id}/dispute - Dispute already open: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgDisputeExists)

		case errors.Is(err, create_dispute.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/dispute - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/dispute - Failed to create dispute: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/dispute - Dispute opened: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusCreated, resp.Booking)
}
