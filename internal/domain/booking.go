package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending        BookingStatus = "pending"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusInProgress     BookingStatus = "in_progress"
	StatusCompleted      BookingStatus = "completed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusNoShowCustomer BookingStatus = "no_show_customer"
	StatusNoShowProvider BookingStatus = "no_show_provider"
	StatusDisputed       BookingStatus = "disputed"
)

// Booking represents a scheduled engagement between a customer and a provider's service
type Booking struct {
	ID         int64
	CustomerID int64
	ProviderID int64
	ServiceID  int64

	BookingDate time.Time
	Status      BookingStatus
	TotalPrice  float64

	// Denormalized data for history
	ServiceName string

	// Two-party completion acknowledgement
	CompletedByCustomer bool
	CompletedByProvider bool
	AutoCompletedAt     *time.Time

	// Dispute state (lives on the booking, not a separate aggregate)
	HasDispute        bool
	DisputeReason     *string
	DisputeStatus     *DisputeStatus
	DisputeResolvedAt *time.Time

	// Review eligibility window
	ReviewEligible      bool
	ReviewEligibleUntil *time.Time

	CancelledBy        *int64
	CancellationReason *string
	CancellationTime   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the booking reached a status with no outgoing interactive transitions
func (b *Booking) IsTerminal() bool {
	return IsTerminalStatus(b.Status)
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// IsPastServiceDate returns true if the booked service date is already behind now
func (b *Booking) IsPastServiceDate(now time.Time) bool {
	return b.BookingDate.Before(now)
}

// BothPartiesCompleted returns true if customer and provider both acknowledged completion
func (b *Booking) BothPartiesCompleted() bool {
	return b.CompletedByCustomer && b.CompletedByProvider
}

// ExactlyOnePartyCompleted returns true if only one of the two completion flags is set.
// This is the auto-completion sweeper's selection condition.
func (b *Booking) ExactlyOnePartyCompleted() bool {
	return b.CompletedByCustomer != b.CompletedByProvider
}

// ReviewWindowOpen returns true if a review may still be submitted at the given moment
func (b *Booking) ReviewWindowOpen(now time.Time) bool {
	if !b.ReviewEligible || b.Status != StatusCompleted {
		return false
	}
	return b.ReviewEligibleUntil == nil || b.ReviewEligibleUntil.After(now)
}

// HoursUntilService returns the (possibly fractional, possibly negative)
// number of hours between now and the booking date
func (b *Booking) HoursUntilService(now time.Time) float64 {
	return b.BookingDate.Sub(now).Hours()
}

// BookingsFilter фильтр для выборки бронирований актора
type BookingsFilter struct {
	CustomerID *int64         // Бронирования, где актор - клиент
	ProviderID *int64         // Бронирования, где актор - исполнитель
	Status     *BookingStatus // Фильтр по статусу (опционально)
	Limit      uint64         // Размер страницы
	Offset     uint64         // Смещение
}
