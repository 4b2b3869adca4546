package models

import (
	"strconv"
	"time"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// SystemActorLabel отображение системного актора в API
const SystemActorLabel = "system"

// Request модели

// ListBookingsRequest запрос бронирований актора с пагинацией
type ListBookingsRequest struct {
	UserID   int64   `json:"userId"`
	Role     string  `json:"role"`             // customer | provider
	Status   *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
	Page     uint64  `json:"page"`
	PageSize uint64  `json:"pageSize"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		Limit:  r.PageSize,
		Offset: (r.Page - 1) * r.PageSize,
	}

	switch r.Role {
	case "customer":
		filter.CustomerID = &r.UserID
	case "provider":
		filter.ProviderID = &r.UserID
	default:
		return filter, ErrInvalidRole
	}

	if r.Status != nil {
		status, ok := domain.ParseBookingStatus(*r.Status)
		if !ok {
			return filter, ErrInvalidStatus
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	ProviderID int64  `json:"providerId"`
	ServiceID  int64  `json:"serviceId"`
	Status     string `json:"status"`

	BookingDate time.Time `json:"bookingDate"`
	TotalPrice  float64   `json:"totalPrice"`
	ServiceName string    `json:"serviceName"`

	CompletedByCustomer bool    `json:"completedByCustomer"`
	CompletedByProvider bool    `json:"completedByProvider"`
	AutoCompletedAt     *string `json:"autoCompletedAt,omitempty"` // ISO 8601

	HasDispute        bool    `json:"hasDispute"`
	DisputeReason     *string `json:"disputeReason,omitempty"`
	DisputeStatus     *string `json:"disputeStatus,omitempty"`
	DisputeResolvedAt *string `json:"disputeResolvedAt,omitempty"`

	ReviewEligible      bool    `json:"reviewEligible"`
	ReviewEligibleUntil *string `json:"reviewEligibleUntil,omitempty"`

	CancelledBy        *int64  `json:"cancelledBy,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancellationTime   *string `json:"cancellationTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	History []HistoryEntryResponse `json:"history,omitempty"`
}

// HistoryEntryResponse одна запись аудита переходов статуса
type HistoryEntryResponse struct {
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Actor          string    `json:"actor"` // user id или "system"
	Reason         *string   `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReviewResponse ответ с данными отзыва
type ReviewResponse struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"bookingId"`
	CustomerID int64     `json:"customerId"`
	ProviderID int64     `json:"providerId"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Page     uint64            `json:"page"`
	PageSize uint64            `json:"pageSize"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                  b.ID,
		CustomerID:          b.CustomerID,
		ProviderID:          b.ProviderID,
		ServiceID:           b.ServiceID,
		Status:              string(b.Status),
		BookingDate:         b.BookingDate,
		TotalPrice:          b.TotalPrice,
		ServiceName:         b.ServiceName,
		CompletedByCustomer: b.CompletedByCustomer,
		CompletedByProvider: b.CompletedByProvider,
		HasDispute:          b.HasDispute,
		DisputeReason:       b.DisputeReason,
		ReviewEligible:      b.ReviewEligible,
		CancelledBy:         b.CancelledBy,
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	resp.AutoCompletedAt = formatTime(b.AutoCompletedAt)
	resp.DisputeResolvedAt = formatTime(b.DisputeResolvedAt)
	resp.ReviewEligibleUntil = formatTime(b.ReviewEligibleUntil)
	resp.CancellationTime = formatTime(b.CancellationTime)

	if b.DisputeStatus != nil {
		ds := string(*b.DisputeStatus)
		resp.DisputeStatus = &ds
	}

	return resp
}

// FromDomainHistory конвертирует записи истории в DTO
func FromDomainHistory(entries []*domain.StatusHistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, HistoryEntryResponse{
			PreviousStatus: string(e.PreviousStatus),
			NewStatus:      string(e.NewStatus),
			Actor:          actorLabel(e.Actor),
			Reason:         e.Reason,
			CreatedAt:      e.CreatedAt,
		})
	}
	return result
}

// FromDomainReview конвертирует отзыв в DTO
func FromDomainReview(r *domain.Review) *ReviewResponse {
	if r == nil {
		return nil
	}
	return &ReviewResponse{
		ID:         r.ID,
		BookingID:  r.BookingID,
		CustomerID: r.CustomerID,
		ProviderID: r.ProviderID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, page, pageSize uint64) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
		Page:     page,
		PageSize: pageSize,
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

func actorLabel(a domain.Actor) string {
	if a.System {
		return SystemActorLabel
	}
	return strconv.FormatInt(a.UserID, 10)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
