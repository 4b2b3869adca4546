package resolve_dispute

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("resolve_dispute: booking not found")

	// ErrNoActiveDispute возвращается, когда по бронированию нет спора
	ErrNoActiveDispute = errors.New("resolve_dispute: booking has no active dispute")

	// ErrInvalidResolution возвращается при неизвестном значении резолюции
	ErrInvalidResolution = errors.New("resolve_dispute: unknown resolution value")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("resolve_dispute: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("resolve_dispute: internal error")
)
