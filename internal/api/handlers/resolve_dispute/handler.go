package resolve_dispute

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/resolve_dispute"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgNoActiveDispute    = "по бронированию нет активного спора"
	msgInvalidResolution  = "неизвестная резолюция"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase ResolveDisputeUseCase
	logger  Logger
}

func NewHandler(useCase ResolveDisputeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/dispute/resolve
// Маршрут закрыт AdminMiddleware: сюда доходят только администраторы.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/dispute/resolve - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	adminID, _ := middleware.UserIDFromContext(r.Context())

	var req ResolveDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/dispute/resolve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	resp, err := h.useCase.Execute(r.Context(), &resolve_dispute.Request{
		BookingID:   bookingID,
		AdminUserID: adminID,
		Resolution:  req.Resolution,
		Notes:       notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, resolve_dispute.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/dispute/resolve - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, resolve_dispute.ErrNoActiveDispute):
			h.logger.Warn("POST /bookings/{id}/dispute/resolve - No active dispute: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNoActiveDispute)

		case errors.Is(err, resolve_dispute.ErrInvalidResolution):
			h.logger.Warn("POST /bookings/{id}/dispute/resolve - Invalid resolution %q: booking_id=%d",
				req.Resolution, bookingID)
			handlers.RespondBadRequest(w, msgInvalidResolution)

		case errors.Is(err, resolve_dispute.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/dispute/resolve - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/dispute/resolve - Failed to resolve dispute: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/dispute/resolve - Dispute resolved: booking_id=%d, admin_id=%d, resolution=%s",
		bookingID, adminID, req.Resolution)
	handlers.RespondJSON(w, http.StatusOK, resp.Booking)
}
