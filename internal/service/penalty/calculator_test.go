package penalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

func TestAssessOutsideWindow(t *testing.T) {
	calc := NewCalculator(24 * time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	booking := &domain.Booking{TotalPrice: 100, BookingDate: now.Add(48 * time.Hour)}

	assert.False(t, calc.Assess(booking, domain.RoleCustomer, now).HasPenalty())
	assert.False(t, calc.Assess(booking, domain.RoleProvider, now).HasPenalty())
}

func TestAssessExactlyAtWindowBoundary(t *testing.T) {
	calc := NewCalculator(24 * time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Ровно 24 часа до услуги: штрафа еще нет
	booking := &domain.Booking{TotalPrice: 100, BookingDate: now.Add(24 * time.Hour)}
	assert.False(t, calc.Assess(booking, domain.RoleCustomer, now).HasPenalty())

	// Секундой позже окно уже нарушено
	late := &domain.Booking{TotalPrice: 100, BookingDate: now.Add(24*time.Hour - time.Second)}
	assert.True(t, calc.Assess(late, domain.RoleCustomer, now).HasPenalty())
}

func TestAssessCustomerLateCancellation(t *testing.T) {
	calc := NewCalculator(24 * time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	booking := &domain.Booking{TotalPrice: 100, BookingDate: now.Add(10 * time.Hour)}
	assessment := calc.Assess(booking, domain.RoleCustomer, now)

	require.NotNil(t, assessment.CustomerPenaltyAmount)
	assert.Nil(t, assessment.ProviderPenaltyAmount)
	assert.InDelta(t, 10.00, *assessment.CustomerPenaltyAmount, 0.001)
}

func TestAssessProviderLateCancellation(t *testing.T) {
	calc := NewCalculator(24 * time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	booking := &domain.Booking{TotalPrice: 200, BookingDate: now.Add(2 * time.Hour)}
	assessment := calc.Assess(booking, domain.RoleProvider, now)

	require.NotNil(t, assessment.ProviderPenaltyAmount)
	assert.Nil(t, assessment.CustomerPenaltyAmount)
	assert.InDelta(t, 30.00, *assessment.ProviderPenaltyAmount, 0.001)
}

func TestAssessAdminCarriesNoPenalty(t *testing.T) {
	calc := NewCalculator(24 * time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	booking := &domain.Booking{TotalPrice: 100, BookingDate: now.Add(time.Hour)}
	assert.False(t, calc.Assess(booking, domain.RoleAdmin, now).HasPenalty())
}
