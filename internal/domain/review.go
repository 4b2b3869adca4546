package domain

import "time"

// Review is a customer's rating of a completed booking, 1:1 with the booking
type Review struct {
	ID         int64
	BookingID  int64
	CustomerID int64
	ProviderID int64
	Rating     int
	Comment    *string
	CreatedAt  time.Time
}

// ProviderRating is the persisted aggregate over all of a provider's reviews
type ProviderRating struct {
	ProviderID    int64
	AverageRating float64
	ReviewCount   int
	UpdatedAt     time.Time
}
