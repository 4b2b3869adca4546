package change_status

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("change_status: booking not found")

	// ErrNotAuthorized возвращается, когда актор не является стороной бронирования
	// Проверяется до таблицы переходов
	ErrNotAuthorized = errors.New("change_status: actor is not a party to this booking")

	// ErrInvalidStatus возвращается при неизвестном целевом статусе
	ErrInvalidStatus = errors.New("change_status: invalid target status")

	// ErrInvalidTransition возвращается, когда ребро отсутствует в таблице переходов
	ErrInvalidTransition = errors.New("change_status: transition is not allowed")

	// ErrRoleNotPermitted возвращается, когда роль актора не может устанавливать целевой статус
	ErrRoleNotPermitted = errors.New("change_status: role is not permitted to set this status")

	// ErrPastServiceDate возвращается при попытке отменить бронирование после даты услуги
	ErrPastServiceDate = errors.New("change_status: booking date is already in the past")

	// ErrDedicatedFlow возвращается для статусов, которые устанавливаются только
	// своими операциями: completed (completion reconciler), disputed (dispute flow)
	ErrDedicatedFlow = errors.New("change_status: status is managed by a dedicated operation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("change_status: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("change_status: internal error")
)
