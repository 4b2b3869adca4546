package change_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/change_status"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidStatus      = "неизвестный статус"
	msgInvalidTransition  = "переход статуса не разрешен"
	msgRoleNotPermitted   = "статус не может быть установлен этой стороной"
	msgPastServiceDate    = "отмена после даты услуги запрещена"
	msgDedicatedFlow      = "статус устанавливается отдельной операцией"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase ChangeStatusUseCase
	logger  Logger
}

func NewHandler(useCase ChangeStatusUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	isAdmin := middleware.IsAdminFromContext(r.Context())

	var req ChangeStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID, userID, isAdmin))
	if err != nil {
		switch {
		case errors.Is(err, change_status.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/status - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, change_status.ErrNotAuthorized):
			h.logger.Warn("PATCH /bookings/{id}/status - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, change_status.ErrInvalidStatus):
			h.logger.Warn("PATCH /bookings/{id}/status - Unknown status %q: booking_id=%d", req.Status, bookingID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, change_status.ErrInvalidTransition):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid transition to %q: booking_id=%d", req.Status, bookingID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, change_status.ErrRoleNotPermitted):
			h.logger.Warn("PATCH /bookings/{id}/status - Role not permitted for %q: booking_id=%d, user_id=%d",
				req.Status, bookingID, userID)
			handlers.RespondForbidden(w, msgRoleNotPermitted)

		case errors.Is(err, change_status.ErrPastServiceDate):
			h.logger.Warn("PATCH /bookings/{id}/status - Past service date cancellation: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgPastServiceDate)

		case errors.Is(err, change_status.ErrDedicatedFlow):
			h.logger.Warn("PATCH /bookings/{id}/status - Dedicated flow status %q: booking_id=%d", req.Status, bookingID)
			handlers.RespondBadRequest(w, msgDedicatedFlow)

		case errors.Is(err, change_status.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /bookings/{id}/status - Failed to change status: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status changed: booking_id=%d, user_id=%d, status=%s",
		bookingID, userID, req.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
