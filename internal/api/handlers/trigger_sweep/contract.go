package trigger_sweep

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/auto_complete"
)

type SweepRunner interface {
	TriggerNow(ctx context.Context) (*auto_complete.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
