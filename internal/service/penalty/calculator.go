package penalty

import (
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// Assessment информационное приложение к записи о переходе: движок сам
// деньги не двигает, суммы уходят в биллинг и уведомления
type Assessment struct {
	ProviderPenaltyAmount *float64
	CustomerPenaltyAmount *float64
}

// HasPenalty returns true if the cancellation attracted any penalty
func (a Assessment) HasPenalty() bool {
	return a.ProviderPenaltyAmount != nil || a.CustomerPenaltyAmount != nil
}

// Calculator derives cancellation penalties from cancellation timing
type Calculator struct {
	window time.Duration
}

// NewCalculator creates a calculator with the given late-cancellation window
func NewCalculator(window time.Duration) *Calculator {
	return &Calculator{window: window}
}

// Assess вычисляет штраф за отмену бронирования.
// Штраф начисляется, только когда до услуги осталось меньше окна:
// исполнителю 15% от стоимости, клиенту 10%. Отмена за пределами окна
// штрафа не несёт.
func (c *Calculator) Assess(booking *domain.Booking, role domain.ActorRole, now time.Time) Assessment {
	hoursUntil := booking.BookingDate.Sub(now)
	if hoursUntil >= c.window {
		return Assessment{}
	}

	var assessment Assessment
	switch role {
	case domain.RoleProvider:
		amount := booking.TotalPrice * domain.ProviderPenaltyRate
		assessment.ProviderPenaltyAmount = &amount
	case domain.RoleCustomer:
		amount := booking.TotalPrice * domain.CustomerPenaltyRate
		assessment.CustomerPenaltyAmount = &amount
	}

	return assessment
}
