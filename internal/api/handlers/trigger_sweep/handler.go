package trigger_sweep

import (
	"errors"
	"net/http"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
	"github.com/yovko123/uslugiBG-backend/internal/jobs/autocomplete"
)

const (
	msgAlreadyRunning = "прогон автозавершения уже выполняется"
)

// SweepResponse итог прогона свипера
type SweepResponse struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type Handler struct {
	runner SweepRunner
	logger Logger
}

func NewHandler(runner SweepRunner, logger Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// Handle POST /internal/jobs/autocomplete
// Ручной запуск свипера, закрыт AdminMiddleware.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.TriggerNow(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, autocomplete.ErrAlreadyRunning):
			h.logger.Warn("POST /internal/jobs/autocomplete - Sweep already in progress")
			handlers.RespondConflict(w, msgAlreadyRunning)

		default:
			h.logger.Error("POST /internal/jobs/autocomplete - Sweep failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/jobs/autocomplete - Sweep finished: scanned=%d completed=%d failed=%d",
		result.Scanned, result.Completed, result.Failed)
	handlers.RespondJSON(w, http.StatusOK, SweepResponse{
		Scanned:   result.Scanned,
		Completed: result.Completed,
		Failed:    result.Failed,
	})
}
