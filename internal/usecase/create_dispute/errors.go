package create_dispute

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("create_dispute: booking not found")

	// ErrNotAuthorized возвращается, когда актор не является стороной бронирования
	ErrNotAuthorized = errors.New("create_dispute: actor is not a party to this booking")

	// ErrReasonRequired возвращается, когда причина спора не указана
	ErrReasonRequired = errors.New("create_dispute: dispute reason is required")

	// ErrInvalidState возвращается, когда спор нельзя открыть из текущего статуса
	// Споры открываются только из completed и in_progress
	ErrInvalidState = errors.New("create_dispute: dispute cannot be opened from current status")

	// ErrDisputeAlreadyOpen возвращается, когда по бронированию уже есть спор
	// hasDispute монотонен: однажды установленный, он не снимается
	ErrDisputeAlreadyOpen = errors.New("create_dispute: booking already has a dispute")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_dispute: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_dispute: internal error")
)
