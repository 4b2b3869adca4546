package domain

// AllowedTransitions represents the booking status flow (diagram) as code.
// Statuses missing from the map are terminal: no outgoing interactive transitions.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShowCustomer, StatusNoShowProvider},
	StatusInProgress: {StatusCompleted, StatusDisputed},
	StatusCompleted:  {StatusDisputed},
	StatusDisputed:   {StatusCompleted},
}

// TerminalStatuses список терминальных статусов: из них нет интерактивных переходов
var TerminalStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShowCustomer,
	StatusNoShowProvider,
}

// CanTransition reports whether the edge from → to exists in the state machine
func CanTransition(from, to BookingStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus returns true for statuses with no outgoing interactive transitions
func IsTerminalStatus(status BookingStatus) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// RoleCanSet reports whether the given role is permitted to request the
// target status. Role restrictions are layered on top of the edge table:
//   - only the provider confirms a booking or claims a customer no-show
//   - only the customer claims a provider no-show
//   - everything else is open to both parties (admin bypasses all of it)
func RoleCanSet(role ActorRole, target BookingStatus) bool {
	if role == RoleAdmin {
		return true
	}

	switch target {
	case StatusConfirmed, StatusNoShowCustomer:
		return role == RoleProvider
	case StatusNoShowProvider:
		return role == RoleCustomer
	default:
		return role == RoleCustomer || role == RoleProvider
	}
}

// ValidStatuses все допустимые значения статуса бронирования
var ValidStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShowCustomer,
	StatusNoShowProvider,
	StatusDisputed,
}

// ParseBookingStatus конвертирует строку в BookingStatus с валидацией
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(s)
	for _, valid := range ValidStatuses {
		if status == valid {
			return status, true
		}
	}
	return "", false
}
