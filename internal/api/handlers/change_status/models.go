package change_status

import (
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/change_status"
)

// ChangeStatusRequest HTTP request model
type ChangeStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// ChangeStatusResponse HTTP response model.
// Суммы штрафов информационные: списанием занимается биллинг.
type ChangeStatusResponse struct {
	Booking               *models.BookingResponse `json:"booking"`
	ProviderPenaltyAmount *float64                `json:"providerPenaltyAmount,omitempty"`
	CustomerPenaltyAmount *float64                `json:"customerPenaltyAmount,omitempty"`
}

// FromUseCaseResponse конвертирует результат usecase в HTTP response
func FromUseCaseResponse(resp *change_status.Response) *ChangeStatusResponse {
	return &ChangeStatusResponse{
		Booking:               resp.Booking,
		ProviderPenaltyAmount: resp.ProviderPenaltyAmount,
		CustomerPenaltyAmount: resp.CustomerPenaltyAmount,
	}
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *ChangeStatusRequest) ToUseCaseRequest(bookingID, userID int64, isAdmin bool) *change_status.Request {
	return &change_status.Request{
		BookingID:    bookingID,
		UserID:       userID,
		IsAdmin:      isAdmin,
		TargetStatus: r.Status,
		Reason:       r.Reason,
	}
}
