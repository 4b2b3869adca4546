package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	"github.com/yovko123/uslugiBG-backend/pkg/dbmetrics"
	"github.com/yovko123/uslugiBG-backend/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"customer_id",
	"provider_id",
	"service_id",
	"booking_date",
	"status",
	"total_price",
	"service_name",
	"completed_by_customer",
	"completed_by_provider",
	"auto_completed_at",
	"has_dispute",
	"dispute_reason",
	"dispute_status",
	"dispute_resolved_at",
	"review_eligible",
	"review_eligible_until",
	"cancelled_by",
	"cancellation_reason",
	"cancellation_time",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями и их историей статусов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"provider_id",
			"service_id",
			"booking_date",
			"status",
			"total_price",
			"service_name",
		).
		Values(
			booking.CustomerID,
			booking.ProviderID,
			booking.ServiceID,
			booking.BookingDate,
			booking.Status,
			booking.TotalPrice,
			booking.ServiceName,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции добавляет FOR UPDATE, чтобы конкурентные запросы
// на одно бронирование сериализовались, а не переплетались
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetWithFilter получает бронирования актора с пагинацией
// Фильтрует по клиенту и/или исполнителю, опционально по статусу
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		OrderBy("booking_date DESC, id DESC")

	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.ProviderID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(filter.Limit).Offset(filter.Offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListStalled получает зависшие бронирования для auto-completion sweeper:
// in_progress, не обновлялись с cutoff, и ровно одна из сторон отметила завершение
func (r *Repository) ListStalled(ctx context.Context, cutoff time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusInProgress}).
		Where(squirrel.Lt{"updated_at": cutoff}).
		Where("completed_by_customer <> completed_by_provider").
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListStalled - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStalled - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateWithHistory атомарно применяет diff к бронированию и добавляет
// ровно одну запись в историю статусов. Вызывается только внутри транзакции.
func (r *Repository) UpdateWithHistory(ctx context.Context, id int64, patch domain.BookingPatch, entry domain.StatusHistoryEntry) error {
	if err := r.Update(ctx, id, patch); err != nil {
		return err
	}
	return r.appendHistory(ctx, dbmetrics.GetExecutor(ctx, r.db), entry)
}

// Update применяет diff без записи в историю
// Используется для отметки завершения одной стороной: это не переход статуса
func (r *Repository) Update(ctx context.Context, id int64, patch domain.BookingPatch) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	changed := false
	if patch.Status != nil {
		updateBuilder = updateBuilder.Set("status", *patch.Status)
		changed = true
	}
	if patch.CompletedByCustomer != nil {
		updateBuilder = updateBuilder.Set("completed_by_customer", *patch.CompletedByCustomer)
		changed = true
	}
	if patch.CompletedByProvider != nil {
		updateBuilder = updateBuilder.Set("completed_by_provider", *patch.CompletedByProvider)
		changed = true
	}
	if patch.AutoCompletedAt != nil {
		updateBuilder = updateBuilder.Set("auto_completed_at", *patch.AutoCompletedAt)
		changed = true
	}
	if patch.HasDispute != nil {
		updateBuilder = updateBuilder.Set("has_dispute", *patch.HasDispute)
		changed = true
	}
	if patch.DisputeReason != nil {
		updateBuilder = updateBuilder.Set("dispute_reason", *patch.DisputeReason)
		changed = true
	}
	if patch.DisputeStatus != nil {
		updateBuilder = updateBuilder.Set("dispute_status", *patch.DisputeStatus)
		changed = true
	}
	if patch.DisputeResolvedAt != nil {
		updateBuilder = updateBuilder.Set("dispute_resolved_at", *patch.DisputeResolvedAt)
		changed = true
	}
	if patch.ReviewEligible != nil {
		updateBuilder = updateBuilder.Set("review_eligible", *patch.ReviewEligible)
		changed = true
	}
	if patch.ReviewEligibleUntil != nil {
		updateBuilder = updateBuilder.Set("review_eligible_until", *patch.ReviewEligibleUntil)
		changed = true
	} else if patch.ClearReviewEligibleUntil {
		updateBuilder = updateBuilder.Set("review_eligible_until", nil)
		changed = true
	}
	if patch.CancelledBy != nil {
		updateBuilder = updateBuilder.Set("cancelled_by", *patch.CancelledBy)
		changed = true
	}
	if patch.CancellationReason != nil {
		updateBuilder = updateBuilder.Set("cancellation_reason", *patch.CancellationReason)
		changed = true
	}
	if patch.CancellationTime != nil {
		updateBuilder = updateBuilder.Set("cancellation_time", *patch.CancellationTime)
		changed = true
	}

	if !changed {
		return ErrEmptyPatch
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// appendHistory добавляет запись в append-only историю статусов
// Системный актор (sweeper) сохраняется как NULL в actor_user_id
func (r *Repository) appendHistory(ctx context.Context, executor DBExecutor, entry domain.StatusHistoryEntry) error {
	var actorUserID sql.NullInt64
	if !entry.Actor.System {
		actorUserID = sql.NullInt64{Int64: entry.Actor.UserID, Valid: true}
	}

	query, args, err := psqlbuilder.Insert("booking_status_history").
		Columns(
			"booking_id",
			"previous_status",
			"new_status",
			"actor_user_id",
			"reason",
		).
		Values(
			entry.BookingID,
			entry.PreviousStatus,
			entry.NewStatus,
			actorUserID,
			entry.Reason,
		).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: appendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: appendHistory - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetHistory получает историю статусов бронирования (от старых к новым)
func (r *Repository) GetHistory(ctx context.Context, bookingID int64) ([]*domain.StatusHistoryEntry, error) {
	return r.history(ctx, bookingID, "created_at ASC, id ASC", 0)
}

// RecentHistory получает последние limit записей истории (от новых к старым)
// Используется фрод-детектором для проверки rapid status churn
func (r *Repository) RecentHistory(ctx context.Context, bookingID int64, limit uint64) ([]*domain.StatusHistoryEntry, error) {
	return r.history(ctx, bookingID, "created_at DESC, id DESC", limit)
}

func (r *Repository) history(ctx context.Context, bookingID int64, order string, limit uint64) ([]*domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"booking_id",
		"previous_status",
		"new_status",
		"actor_user_id",
		"reason",
		"created_at",
	).
		From("booking_status_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy(order)

	if limit > 0 {
		selectBuilder = selectBuilder.Limit(limit)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: history - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: history - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		var actorUserID sql.NullInt64

		err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&actorUserID,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: history - scan row: %v", ErrScanRow, err)
		}

		if actorUserID.Valid {
			entry.Actor = domain.UserActor(actorUserID.Int64)
		} else {
			entry.Actor = domain.SystemActor()
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: history - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

// CountNoShowClaims подсчитывает заявления о неявке противоположной стороны,
// сделанные актором за период (индексированный time-window запрос,
// без полного сканирования истории)
func (r *Repository) CountNoShowClaims(ctx context.Context, actorUserID int64, claimed domain.BookingStatus, since time.Time) (int, error) {
	return r.countHistory(ctx, squirrel.And{
		squirrel.Eq{"actor_user_id": actorUserID},
		squirrel.Eq{"new_status": claimed},
		squirrel.GtOrEq{"created_at": since},
	})
}

// CountCancellationsByActor подсчитывает отмены, выполненные актором за период
func (r *Repository) CountCancellationsByActor(ctx context.Context, actorUserID int64, since time.Time) (int, error) {
	return r.countHistory(ctx, squirrel.And{
		squirrel.Eq{"actor_user_id": actorUserID},
		squirrel.Eq{"new_status": domain.StatusCancelled},
		squirrel.GtOrEq{"created_at": since},
	})
}

func (r *Repository) countHistory(ctx context.Context, where squirrel.Sqlizer) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("booking_status_history").
		Where(where).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: countHistory - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: countHistory - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в domain.Booking
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime
	var disputeStatus sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.BookingDate,
		&booking.Status,
		&booking.TotalPrice,
		&booking.ServiceName,
		&booking.CompletedByCustomer,
		&booking.CompletedByProvider,
		&booking.AutoCompletedAt,
		&booking.HasDispute,
		&booking.DisputeReason,
		&disputeStatus,
		&booking.DisputeResolvedAt,
		&booking.ReviewEligible,
		&booking.ReviewEligibleUntil,
		&booking.CancelledBy,
		&booking.CancellationReason,
		&booking.CancellationTime,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if disputeStatus.Valid {
		ds := domain.DisputeStatus(disputeStatus.String)
		booking.DisputeStatus = &ds
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
