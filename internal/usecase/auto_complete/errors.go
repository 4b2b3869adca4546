package auto_complete

import "errors"

var (
	// ErrListStalled возвращается, когда не удалось выбрать зависшие бронирования
	ErrListStalled = errors.New("auto_complete: failed to list stalled bookings")

	// ErrAborted возвращается, когда прогон прерван из-за проблем с соединением
	ErrAborted = errors.New("auto_complete: sweep aborted due to connectivity failure")
)
