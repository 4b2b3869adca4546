package create_dispute

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_dispute"
)

type CreateDisputeUseCase interface {
	Execute(ctx context.Context, req *create_dispute.Request) (*create_dispute.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
