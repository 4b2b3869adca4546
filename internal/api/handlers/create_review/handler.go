package create_review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_review"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "отзыв может оставить только клиент"
	msgNotEligible        = "бронирование не дает права на отзыв"
	msgWindowClosed       = "окно отзыва истекло"
	msgDuplicateReview    = "отзыв по бронированию уже существует"
	msgInvalidRating      = "оценка должна быть от 1 до 5"
	msgInvalidInput       = "некорректные данные отзыва"
)

type Handler struct {
	useCase CreateReviewUseCase
	logger  Logger
}

func NewHandler(useCase CreateReviewUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reviews
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reviews - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CreateReviewRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reviews - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}

	resp, err := h.useCase.Execute(r.Context(), &create_review.Request{
		BookingID: bookingID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, create_review.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reviews - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, create_review.ErrNotAuthorized):
			h.logger.Warn("POST /bookings/{id}/reviews - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, create_review.ErrNotEligible):
			h.logger.Warn("POST /bookings/{id}/reviews - Not eligible: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotEligible)

		case errors.Is(err, create_review.ErrWindowClosed):
			h.logger.Warn("POST /bookings/{id}/reviews - Review window closed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgWindowClosed)

		case errors.Is(err, create_review.ErrDuplicateReview):
			h.logger.Warn("POST /bookings/{id}/reviews - Duplicate review: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgDuplicateReview)

		case errors.Is(err, create_review.ErrInvalidRating):
			h.logger.Warn("POST /bookings/{id}/reviews - Invalid rating %d: booking_id=%d", req.Rating, bookingID)
			handlers.RespondBadRequest(w, msgInvalidRating)

		case errors.Is(err, create_review.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reviews - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/reviews - Failed to create review: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reviews - Review created: booking_id=%d, user_id=%d, rating=%d",
		bookingID, userID, req.Rating)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
