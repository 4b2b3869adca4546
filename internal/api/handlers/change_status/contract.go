package change_status

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/change_status"
)

type ChangeStatusUseCase interface {
	Execute(ctx context.Context, req *change_status.Request) (*change_status.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
