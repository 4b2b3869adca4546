package create_booking

import (
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID     int64     `json:"providerId"`
	ServiceID      int64     `json:"serviceId"`
	BookingDate    time.Time `json:"bookingDate"`
	TotalPrice     float64   `json:"totalPrice"`
	ServiceName    string    `json:"serviceName"`
	InstantBooking bool      `json:"instantBooking"`
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) *create_booking.Request {
	return &create_booking.Request{
		CustomerID:     customerID,
		ProviderID:     r.ProviderID,
		ServiceID:      r.ServiceID,
		BookingDate:    r.BookingDate,
		TotalPrice:     r.TotalPrice,
		ServiceName:    r.ServiceName,
		InstantBooking: r.InstantBooking,
	}
}
