package mark_completion

import (
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/mark_completion"
)

// MarkCompletionResponse HTTP response model
type MarkCompletionResponse struct {
	Booking   *models.BookingResponse `json:"booking"`
	Completed bool                    `json:"completed"`
}

// FromUseCaseResponse конвертирует результат usecase в HTTP response
func FromUseCaseResponse(resp *mark_completion.Response) *MarkCompletionResponse {
	return &MarkCompletionResponse{
		Booking:   resp.Booking,
		Completed: resp.Completed,
	}
}
