package create_booking

import (
	"errors"
	"net/http"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgPastBookingDate    = "дата услуги должна быть в будущем"
	msgInvalidPrice       = "цена должна быть положительной"
	msgSameParties        = "клиент и исполнитель не могут совпадать"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, create_booking.ErrPastBookingDate):
			h.logger.Warn("POST /bookings - Past booking date: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgPastBookingDate)

		case errors.Is(err, create_booking.ErrInvalidPrice):
			h.logger.Warn("POST /bookings - Invalid price: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgInvalidPrice)

		case errors.Is(err, create_booking.ErrSameParties):
			h.logger.Warn("POST /bookings - Same parties: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgSameParties)

		case errors.Is(err, create_booking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, user_id=%d", resp.Booking.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, resp.Booking)
}
