package list_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/api/middleware"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
)

const (
	msgInvalidQuery = "некорректные параметры запроса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings?role=customer&status=confirmed&page=1&pageSize=20
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	req, err := parseQuery(r, userID)
	if err != nil {
		h.logger.Warn("GET /bookings - Invalid query: user_id=%d, error=%v", userID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	resp, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid filter: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /bookings - Failed to list bookings: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings - Listed %d bookings: user_id=%d, role=%s", len(resp.Bookings), userID, req.Role)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func parseQuery(r *http.Request, userID int64) (*models.ListBookingsRequest, error) {
	query := r.URL.Query()

	req := &models.ListBookingsRequest{
		UserID: userID,
		Role:   query.Get("role"),
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.Page = page
	}

	if raw := query.Get("pageSize"); raw != "" {
		pageSize, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.PageSize = pageSize
	}

	return req, nil
}
