package provider

import (
	"context"
	"fmt"

	"github.com/yovko123/uslugiBG-backend/pkg/dbmetrics"
)

// Repository репозиторий агрегированного рейтинга исполнителей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория рейтингов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpdateAggregateRating сохраняет пересчитанный средний рейтинг исполнителя.
// Upsert: строка создается при первом отзыве.
func (r *Repository) UpdateAggregateRating(ctx context.Context, providerID int64, average float64, reviewCount int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// squirrel не умеет ON CONFLICT DO UPDATE с EXCLUDED, поэтому сырой запрос
	query := `
		INSERT INTO provider_ratings (provider_id, average_rating, review_count, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (provider_id) DO UPDATE
		SET average_rating = EXCLUDED.average_rating,
		    review_count = EXCLUDED.review_count,
		    updated_at = NOW()`

	if _, err := executor.ExecContext(ctx, query, providerID, average, reviewCount); err != nil {
		return fmt.Errorf("%w: UpdateAggregateRating - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}
