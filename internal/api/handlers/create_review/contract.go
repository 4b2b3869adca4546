package create_review

import (
	"context"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_review"
)

type CreateReviewUseCase interface {
	Execute(ctx context.Context, req *create_review.Request) (*create_review.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
