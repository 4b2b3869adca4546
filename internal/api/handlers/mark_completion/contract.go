package mark_completion

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/mark_completion"
)

type MarkCompletionUseCase interface {
	Execute(ctx context.Context, req *mark_completion.Request) (*mark_completion.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
