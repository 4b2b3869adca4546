package change_status

import (
	"context"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/internal/service/fraud"
	"github.com/yovko123/uslugiBG-backend/internal/service/penalty"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateWithHistory(ctx context.Context, id int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error
	CountCancellationsByActor(ctx context.Context, actorUserID int64, since time.Time) (int, error)
}

// FraudDetector advisory-проверка запроса на фрод-сигналы
type FraudDetector interface {
	Check(ctx context.Context, in fraud.CheckInput) (fraud.Result, error)
}

// PenaltyCalculator расчёт штрафов за позднюю отмену
type PenaltyCalculator interface {
	Assess(booking *domain.Booking, role domain.ActorRole, now time.Time) penalty.Assessment
}

// SecuritySink приёмник security-событий
type SecuritySink interface {
	Emit(event security.Event)
}

// Notifier fire-and-forget уведомления
type Notifier interface {
	PenaltyAssessed(ctx context.Context, bookingID int64, party string, amount float64)
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
