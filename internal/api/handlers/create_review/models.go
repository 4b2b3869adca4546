package create_review

import (
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/usecase/create_review"
)

// CreateReviewRequest HTTP request model
type CreateReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment,omitempty"`
}

// CreateReviewResponse HTTP response model с пересчитанным рейтингом исполнителя
type CreateReviewResponse struct {
	Review         *models.ReviewResponse `json:"review"`
	ProviderRating float64                `json:"providerRating"`
	ReviewCount    int                    `json:"reviewCount"`
}

// FromUseCaseResponse конвертирует результат usecase в HTTP response
func FromUseCaseResponse(resp *create_review.Response) *CreateReviewResponse {
	return &CreateReviewResponse{
		Review:         resp.Review,
		ProviderRating: resp.ProviderRating,
		ReviewCount:    resp.ReviewCount,
	}
}
