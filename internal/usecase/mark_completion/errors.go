package mark_completion

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("mark_completion: booking not found")

	// ErrNotAuthorized возвращается, когда актор не является стороной бронирования
	ErrNotAuthorized = errors.New("mark_completion: actor is not a party to this booking")

	// ErrInvalidState возвращается, когда бронирование не находится в in_progress
	ErrInvalidState = errors.New("mark_completion: booking is not in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("mark_completion: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("mark_completion: internal error")
)
