package security

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsCollector счетчик security-событий
type MetricsCollector interface {
	IncSecurityEvent(service, flag string)
}
