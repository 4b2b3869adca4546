package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveActorRole(t *testing.T) {
	booking := &Booking{CustomerID: 10, ProviderID: 20}

	assert.Equal(t, RoleCustomer, ResolveActorRole(booking, 10, false))
	assert.Equal(t, RoleProvider, ResolveActorRole(booking, 20, false))
	assert.Equal(t, RoleUnrelated, ResolveActorRole(booking, 30, false))
	// Администратор имеет приоритет даже над владением
	assert.Equal(t, RoleAdmin, ResolveActorRole(booking, 10, true))
	assert.Equal(t, RoleAdmin, ResolveActorRole(booking, 99, true))
}

func TestCompletionPredicates(t *testing.T) {
	cases := []struct {
		customer, provider bool
		both, exactlyOne   bool
	}{
		{false, false, false, false},
		{true, false, false, true},
		{false, true, false, true},
		{true, true, true, false},
	}

	for _, tc := range cases {
		b := &Booking{CompletedByCustomer: tc.customer, CompletedByProvider: tc.provider}
		assert.Equal(t, tc.both, b.BothPartiesCompleted())
		assert.Equal(t, tc.exactlyOne, b.ExactlyOnePartyCompleted())
	}
}

func TestReviewWindowOpen(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Minute)

	cases := []struct {
		name    string
		booking Booking
		want    bool
	}{
		{"eligible with open window", Booking{Status: StatusCompleted, ReviewEligible: true, ReviewEligibleUntil: &future}, true},
		{"eligible without deadline", Booking{Status: StatusCompleted, ReviewEligible: true}, true},
		{"window expired", Booking{Status: StatusCompleted, ReviewEligible: true, ReviewEligibleUntil: &past}, false},
		{"not eligible", Booking{Status: StatusCompleted, ReviewEligible: false, ReviewEligibleUntil: &future}, false},
		{"wrong status", Booking{Status: StatusDisputed, ReviewEligible: true, ReviewEligibleUntil: &future}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.booking.ReviewWindowOpen(now))
		})
	}
}

func TestIsPastServiceDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&Booking{BookingDate: now.Add(-time.Hour)}).IsPastServiceDate(now))
	assert.False(t, (&Booking{BookingDate: now.Add(time.Hour)}).IsPastServiceDate(now))
	assert.False(t, (&Booking{BookingDate: now}).IsPastServiceDate(now))
}

func TestHoursUntilService(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := &Booking{BookingDate: now.Add(10 * time.Hour)}

	assert.InDelta(t, 10.0, b.HoursUntilService(now), 0.001)
	assert.InDelta(t, -2.0, (&Booking{BookingDate: now.Add(-2 * time.Hour)}).HoursUntilService(now), 0.001)
}
