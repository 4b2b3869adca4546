package domain

import "time"

// BookingPatch is the computed diff an accepted operation persists.
// Nil fields are left untouched. Every patch is applied atomically
// together with exactly one StatusHistoryEntry.
type BookingPatch struct {
	Status *BookingStatus

	CompletedByCustomer *bool
	CompletedByProvider *bool
	AutoCompletedAt     *time.Time

	HasDispute        *bool
	DisputeReason     *string
	DisputeStatus     *DisputeStatus
	DisputeResolvedAt *time.Time

	ReviewEligible      *bool
	ReviewEligibleUntil *time.Time
	// ClearReviewEligibleUntil сбрасывает review_eligible_until в NULL:
	// nil в ReviewEligibleUntil означает "не трогать", а не "очистить"
	ClearReviewEligibleUntil bool

	CancelledBy        *int64
	CancellationReason *string
	CancellationTime   *time.Time
}
