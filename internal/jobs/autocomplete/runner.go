package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/auto_complete"
)

// ErrAlreadyRunning возвращается, когда прогон свипера уже идет
var ErrAlreadyRunning = errors.New("autocomplete: sweep already in progress")

// Sweeper интерфейс usecase автозавершения
type Sweeper interface {
	Execute(ctx context.Context) (*auto_complete.Result, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Runner запускает свипер автозавершения раз в сутки в заданный час UTC.
// Одновременно выполняется не более одного прогона: ручной запуск через
// TriggerNow и плановый не пересекаются.
type Runner struct {
	sweeper Sweeper
	logger  Logger
	hourUTC int

	mu sync.Mutex
}

// NewRunner создает новый экземпляр runner
func NewRunner(sweeper Sweeper, hourUTC int, logger Logger) *Runner {
	return &Runner{
		sweeper: sweeper,
		logger:  logger,
		hourUTC: hourUTC,
	}
}

// Run блокирует до отмены контекста, запуская свипер ежедневно
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("Autocomplete runner started, daily sweep at %02d:00 UTC", r.hourUTC)

	for {
		wait := time.Until(r.nextRun(time.Now().UTC()))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("Autocomplete runner stopped: %v", ctx.Err())
			return
		case <-timer.C:
			if _, err := r.TriggerNow(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				r.logger.Error("Autocomplete runner: scheduled sweep failed: %v", err)
			}
		}
	}
}

// TriggerNow запускает один прогон немедленно.
// Используется плановым циклом и внутренним эндпоинтом ручного запуска.
func (r *Runner) TriggerNow(ctx context.Context) (*auto_complete.Result, error) {
	if !r.mu.TryLock() {
		r.logger.Warn("Autocomplete runner: sweep requested while another is in progress")
		return nil, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	return r.sweeper.Execute(ctx)
}

// nextRun возвращает ближайший момент планового запуска
func (r *Runner) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), r.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
