package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the service
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbPoolOpen      *prometheus.GaugeVec
	dbPoolInUse     *prometheus.GaugeVec
	dbPoolIdle      *prometheus.GaugeVec

	securityEventsTotal *prometheus.CounterVec
	sweeperRunsTotal    *prometheus.CounterVec
	sweeperBookings     *prometheus.CounterVec
}

// New registers and returns the collectors for the given service name
func New(service string) *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		dbQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database statements",
		}, []string{"service", "result"}),
		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database statement latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"service"}),
		dbPoolOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_open_connections",
			Help: "Open connections in the pool",
		}, []string{"service"}),
		dbPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_in_use_connections",
			Help: "Connections currently in use",
		}, []string{"service"}),
		dbPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_pool_idle_connections",
			Help: "Idle connections in the pool",
		}, []string{"service"}),
		securityEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_security_events_total",
			Help: "Fraud/abuse signals emitted by the lifecycle engine",
		}, []string{"service", "flag"}),
		sweeperRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_sweeper_runs_total",
			Help: "Auto-completion sweeper runs",
		}, []string{"service", "result"}),
		sweeperBookings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_sweeper_bookings_total",
			Help: "Bookings touched by the auto-completion sweeper",
		}, []string{"service", "result"}),
	}
}

// ObserveHTTPRequest records one handled HTTP request
func (m *Metrics) ObserveHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery records one executed database statement
func (m *Metrics) ObserveDBQuery(service string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.dbQueriesTotal.WithLabelValues(service, result).Inc()
	m.dbQueryDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SetDBPoolStats publishes a connection pool snapshot
func (m *Metrics) SetDBPoolStats(service string, stats sql.DBStats) {
	m.dbPoolOpen.WithLabelValues(service).Set(float64(stats.OpenConnections))
	m.dbPoolInUse.WithLabelValues(service).Set(float64(stats.InUse))
	m.dbPoolIdle.WithLabelValues(service).Set(float64(stats.Idle))
}

// IncSecurityEvent counts one emitted fraud/abuse signal
func (m *Metrics) IncSecurityEvent(service, flag string) {
	m.securityEventsTotal.WithLabelValues(service, flag).Inc()
}

// ObserveSweeperRun counts one sweeper run and its per-booking outcomes
func (m *Metrics) ObserveSweeperRun(service string, completed, failed int) {
	result := "ok"
	if failed > 0 {
		result = "partial"
	}
	m.sweeperRunsTotal.WithLabelValues(service, result).Inc()
	m.sweeperBookings.WithLabelValues(service, "completed").Add(float64(completed))
	m.sweeperBookings.WithLabelValues(service, "failed").Add(float64(failed))
}
