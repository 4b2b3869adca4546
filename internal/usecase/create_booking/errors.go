package create_booking

import "errors"

var (
	// ErrPastBookingDate возвращается, когда дата услуги не в будущем
	ErrPastBookingDate = errors.New("create_booking: booking date must be in the future")

	// ErrInvalidPrice возвращается при неположительной цене
	ErrInvalidPrice = errors.New("create_booking: total price must be positive")

	// ErrSameParties возвращается, когда клиент и исполнитель совпадают
	ErrSameParties = errors.New("create_booking: customer and provider must differ")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
