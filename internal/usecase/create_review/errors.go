package create_review

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("create_review: booking not found")

	// ErrNotAuthorized возвращается, когда отзыв пытается оставить не клиент бронирования
	ErrNotAuthorized = errors.New("create_review: only the customer may leave a review")

	// ErrNotEligible возвращается, когда бронирование не даёт права на отзыв
	ErrNotEligible = errors.New("create_review: booking is not eligible for review")

	// ErrWindowClosed возвращается, когда окно отзыва истекло
	ErrWindowClosed = errors.New("create_review: review window has closed")

	// ErrDuplicateReview возвращается при повторном отзыве на то же бронирование
	ErrDuplicateReview = errors.New("create_review: booking already has a review")

	// ErrInvalidRating возвращается при оценке вне диапазона 1..5
	ErrInvalidRating = errors.New("create_review: rating must be between 1 and 5")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_review: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_review: internal error")
)
