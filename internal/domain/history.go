package domain

import "time"

// StatusHistoryEntry is one row of the append-only booking audit trail.
// Exactly one entry is written per accepted transition; entries are never
// mutated or deleted.
type StatusHistoryEntry struct {
	ID             int64
	BookingID      int64
	PreviousStatus BookingStatus
	NewStatus      BookingStatus
	Actor          Actor
	Reason         *string
	CreatedAt      time.Time
}
