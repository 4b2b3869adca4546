package create_review

import (
	"context"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ReviewRepository интерфейс репозитория отзывов
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	AverageForProvider(ctx context.Context, providerID int64) (float64, int, error)
	CustomerAverageForProvider(ctx context.Context, customerID, providerID int64, since time.Time) (float64, int, error)
}

// ProviderRepository интерфейс репозитория агрегированного рейтинга
type ProviderRepository interface {
	UpdateAggregateRating(ctx context.Context, providerID int64, average float64, reviewCount int) error
}

// SecuritySink приёмник security-событий
type SecuritySink interface {
	Emit(event security.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
