package security

import (
	"encoding/json"
	"time"
)

// Event структурированная запись о подозрительной активности.
// Сигналы никогда не меняют данные бронирования - только фиксируются
// для модерации и аудита.
type Event struct {
	ActorUserID int64                  `json:"actorUserId"`
	BookingID   int64                  `json:"bookingId"`
	Flags       []string               `json:"flags"`
	Timestamp   time.Time              `json:"timestamp"`
	Request     map[string]interface{} `json:"request,omitempty"`
}

// Sink приёмник security-событий: структурированный лог + Prometheus счётчик
type Sink struct {
	logger  Logger
	metrics MetricsCollector
	service string
}

// NewSink создает новый приёмник security-событий
// metrics может быть nil, если метрики выключены
func NewSink(logger Logger, metrics MetricsCollector, service string) *Sink {
	return &Sink{
		logger:  logger,
		metrics: metrics,
		service: service,
	}
}

// Emit публикует событие. Ошибки сериализации не прерывают запрос:
// событие всё равно логируется в усечённом виде.
func (s *Sink) Emit(event Event) {
	if len(event.Flags) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("security: failed to marshal event for booking=%d: %v", event.BookingID, err)
		s.logger.Warn("security: flags=%v actor=%d booking=%d", event.Flags, event.ActorUserID, event.BookingID)
	} else {
		s.logger.Warn("security: %s", string(payload))
	}

	if s.metrics != nil {
		for _, flag := range event.Flags {
			s.metrics.IncSecurityEvent(s.service, flag)
		}
	}
}
