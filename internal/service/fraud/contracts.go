package fraud

import (
	"context"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// HistoryRepository доступ к истории статусов для вычисления сигналов.
// Все сигналы пересчитываются из durable истории по индексированным
// time-window запросам, без общих in-memory счётчиков.
type HistoryRepository interface {
	RecentHistory(ctx context.Context, bookingID int64, limit uint64) ([]*domain.StatusHistoryEntry, error)
	CountNoShowClaims(ctx context.Context, actorUserID int64, claimed domain.BookingStatus, since time.Time) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
