package auto_complete

import (
	"context"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListStalled(ctx context.Context, cutoff time.Time) ([]*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateWithHistory(ctx context.Context, id int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error
}

// Notifier fire-and-forget уведомления
type Notifier interface {
	BookingAutoCompleted(ctx context.Context, bookingID int64)
}

// MetricsObserver метрики прогонов свипера
type MetricsObserver interface {
	ObserveSweeperRun(service string, completed, failed int)
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
