package resolve_dispute

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/resolve_dispute"
)

type ResolveDisputeUseCase interface {
	Execute(ctx context.Context, req *resolve_dispute.Request) (*resolve_dispute.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
