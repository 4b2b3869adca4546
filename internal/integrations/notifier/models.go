package notifier

// notificationEvent событие для сервиса уведомлений
type notificationEvent struct {
	Type      string                 `json:"type"`
	BookingID int64                  `json:"booking_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Типы событий сервиса уведомлений
const (
	eventPenaltyAssessed      = "booking.penalty_assessed"
	eventDisputeOpened        = "booking.dispute_opened"
	eventDisputeResolved      = "booking.dispute_resolved"
	eventBookingAutoCompleted = "booking.auto_completed"
)
