package review

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/pkg/dbmetrics"
	"github.com/yovko123/uslugiBG-backend/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// Repository репозиторий для работы с отзывами
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория отзывов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отзыв на бронирование
// Уникальность booking_id обеспечивается ограничением в БД:
// вторая вставка возвращает ErrDuplicateReview
func (r *Repository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reviews").
		Columns(
			"booking_id",
			"customer_id",
			"provider_id",
			"rating",
			"comment",
		).
		Values(
			review.BookingID,
			review.CustomerID,
			review.ProviderID,
			review.Rating,
			review.Comment,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return review, nil
}

// GetByBookingID получает отзыв по бронированию
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"customer_id",
		"provider_id",
		"rating",
		"comment",
		"created_at",
	).
		From("reviews").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var review domain.Review
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&review.ID,
		&review.BookingID,
		&review.CustomerID,
		&review.ProviderID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan review: %v", ErrScanRow, err)
	}

	return &review, nil
}

// AverageForProvider вычисляет среднюю оценку и количество отзывов исполнителя
func (r *Repository) AverageForProvider(ctx context.Context, providerID int64) (float64, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COALESCE(AVG(rating), 0)",
		"COUNT(*)",
	).
		From("reviews").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()

	if err != nil {
		return 0, 0, fmt.Errorf("%w: AverageForProvider - build select query: %v", ErrBuildQuery, err)
	}

	var avg float64
	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("%w: AverageForProvider - scan aggregate: %v", ErrScanRow, err)
	}

	return avg, count, nil
}

// CustomerAverageForProvider вычисляет среднюю оценку, которую клиент ставил
// этому исполнителю за период. Используется проверкой на аномальные отзывы.
func (r *Repository) CustomerAverageForProvider(ctx context.Context, customerID, providerID int64, since time.Time) (float64, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COALESCE(AVG(rating), 0)",
		"COUNT(*)",
	).
		From("reviews").
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		ToSql()

	if err != nil {
		return 0, 0, fmt.Errorf("%w: CustomerAverageForProvider - build select query: %v", ErrBuildQuery, err)
	}

	var avg float64
	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("%w: CustomerAverageForProvider - scan aggregate: %v", ErrScanRow, err)
	}

	return avg, count, nil
}
