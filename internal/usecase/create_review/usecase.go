package create_review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	reviewRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/review"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
	"github.com/yovko123/uslugiBG-backend/internal/service/security"
)

// anomalyFlag security-флаг аномального перепада оценки
const anomalyFlag = "anomalous_review_rating"

// Request запрос на создание отзыва
type Request struct {
	BookingID int64
	UserID    int64
	Rating    int
	Comment   string
}

// Response результат создания отзыва
type Response struct {
	Review         *models.ReviewResponse
	ProviderRating float64
	ReviewCount    int
}

// UseCase создание отзыва: проверяет право на отзыв, пишет отзыв и в той же
// транзакции пересчитывает агрегированный рейтинг исполнителя
type UseCase struct {
	bookingRepo  BookingRepository
	reviewRepo   ReviewRepository
	providerRepo ProviderRepository
	securitySink SecuritySink
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	// anomalyWindow период, за который сравнивается история оценок
	// клиента по этому исполнителю
	anomalyWindow time.Duration
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	reviewRepo ReviewRepository,
	providerRepo ProviderRepository,
	securitySink SecuritySink,
	txManager TransactionManager,
	anomalyWindow time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		reviewRepo:    reviewRepo,
		providerRepo:  providerRepo,
		securitySink:  securitySink,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
		anomalyWindow: anomalyWindow,
	}
}

// Execute создает отзыв по завершённому бронированию.
// Отзыв и пересчёт рейтинга идут в одной транзакции: средний рейтинг
// исполнителя никогда не расходится с таблицей отзывов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReview: booking=%d user=%d rating=%d", req.BookingID, req.UserID, req.Rating)

	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		created   *domain.Review
		avg       float64
		count     int
		anomalous bool
	)

	txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			uc.logger.Error("CreateReview: repository error for booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to load booking: %v", ErrInternal, err)
		}

		// Отзыв оставляет только клиент бронирования
		if booking.CustomerID != req.UserID {
			uc.logger.Warn("CreateReview: user=%d is not the customer of booking=%d", req.UserID, booking.ID)
			return ErrNotAuthorized
		}

		if booking.Status != domain.StatusCompleted || !booking.ReviewEligible {
			uc.logger.Warn("CreateReview: booking=%d not eligible (status=%s, eligible=%v)",
				booking.ID, booking.Status, booking.ReviewEligible)
			return ErrNotEligible
		}
		if !booking.ReviewWindowOpen(now) {
			uc.logger.Warn("CreateReview: review window closed for booking=%d", booking.ID)
			return ErrWindowClosed
		}

		anomalous = uc.checkAnomaly(txCtx, booking, req.Rating, now)

		review := &domain.Review{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			ProviderID: booking.ProviderID,
			Rating:     req.Rating,
		}
		if comment := strings.TrimSpace(req.Comment); comment != "" {
			review.Comment = &comment
		}

		created, err = uc.reviewRepo.Create(txCtx, review)
		if err != nil {
			if errors.Is(err, reviewRepo.ErrDuplicateReview) {
				return ErrDuplicateReview
			}
			uc.logger.Error("CreateReview: failed to create review for booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to create review: %v", ErrInternal, err)
		}

		avg, count, err = uc.reviewRepo.AverageForProvider(txCtx, booking.ProviderID)
		if err != nil {
			uc.logger.Error("CreateReview: failed to aggregate rating for provider=%d: %v", booking.ProviderID, err)
			return fmt.Errorf("%w: failed to aggregate rating: %v", ErrInternal, err)
		}
		if err := uc.providerRepo.UpdateAggregateRating(txCtx, booking.ProviderID, avg, count); err != nil {
			uc.logger.Error("CreateReview: failed to persist rating for provider=%d: %v", booking.ProviderID, err)
			return fmt.Errorf("%w: failed to persist provider rating: %v", ErrInternal, err)
		}
		return nil
	})

	if anomalous {
		uc.securitySink.Emit(security.Event{
			ActorUserID: req.UserID,
			BookingID:   req.BookingID,
			Flags:       []string{anomalyFlag},
			Timestamp:   now,
			Request:     map[string]interface{}{"operation": "create_review", "rating": req.Rating},
		})
	}

	if txErr != nil {
		return nil, txErr
	}

	uc.logger.Info("CreateReview: review=%d created for booking=%d, provider rating=%.2f (%d reviews)",
		created.ID, req.BookingID, avg, count)

	return &Response{
		Review:         models.FromDomainReview(created),
		ProviderRating: avg,
		ReviewCount:    count,
	}, nil
}

// checkAnomaly сравнивает новую оценку с историей оценок клиента по этому
// исполнителю. Резкий перепад лишь помечается: отзыв не блокируется.
func (uc *UseCase) checkAnomaly(ctx context.Context, booking *domain.Booking, rating int, now time.Time) bool {
	priorAvg, priorCount, err := uc.reviewRepo.CustomerAverageForProvider(
		ctx, booking.CustomerID, booking.ProviderID, now.Add(-uc.anomalyWindow))
	if err != nil {
		// Проверка advisory: ошибка чтения истории не мешает отзыву
		uc.logger.Error("CreateReview: anomaly check failed for booking=%d: %v", booking.ID, err)
		return false
	}
	if priorCount == 0 {
		return false
	}

	// Флаг только на крайних оценках: устойчиво высокая история против
	// единицы и устойчиво низкая против пятерки
	highToLow := priorAvg >= 4.5 && rating <= domain.MinRating
	lowToHigh := priorAvg <= 1.5 && rating >= domain.MaxRating
	if highToLow || lowToHigh {
		uc.logger.Warn("CreateReview: anomalous rating swing for booking=%d: prior avg=%.2f, new=%d",
			booking.ID, priorAvg, rating)
		return true
	}
	return false
}

func (uc *UseCase) validateRequest(req *Request) error {
	if req.BookingID <= 0 || req.UserID <= 0 {
		return fmt.Errorf("%w: bookingID and userID must be positive", ErrInvalidInput)
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, req.Rating)
	}
	if len(req.Comment) > domain.MaxCommentLength {
		return fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, domain.MaxCommentLength)
	}
	return nil
}
