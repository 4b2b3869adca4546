package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
	bookingRepo "github.com/yovko123/uslugiBG-backend/internal/infra/storage/booking"
	"github.com/yovko123/uslugiBG-backend/internal/service/bookings/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service read-сервис бронирований: карточка с историей и списки актора
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр read-сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование с историей статусов
// Доступно только сторонам бронирования и администратору
func (s *Service) GetByID(ctx context.Context, id int64, userID int64, isAdmin bool) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	role := domain.ResolveActorRole(booking, userID, isAdmin)
	if !role.IsParty() && role != domain.RoleAdmin {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	history, err := s.bookingRepo.GetHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to load history for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - history error: %v", ErrInternal, err)
	}

	resp := models.FromDomainBooking(booking)
	resp.History = models.FromDomainHistory(history)

	s.logger.Info("GetByID: successfully fetched booking id=%d (%d history entries)", id, len(history))
	return resp, nil
}

// List получает бронирования актора в указанной роли с пагинацией
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("List: fetching bookings for user=%d role=%s", req.UserID, req.Role)

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings, req.Page, req.PageSize), nil
}
