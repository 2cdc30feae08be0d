package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
// Регистрируется в default registry, отдается через promhttp.Handler()
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики работы с БД
	DBQueryDuration  *prometheus.HistogramVec
	DBConnsOpen      *prometheus.GaugeVec
	DBConnsInUse     *prometheus.GaugeVec
	DBConnsIdle      *prometheus.GaugeVec
	DBConnsWaitCount *prometheus.GaugeVec

	// Метрики фоновой очистки холдов
	SweeperHoldsExpired *prometheus.CounterVec
	SweeperErrors       *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBConnsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBConnsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBConnsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBConnsWaitCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SweeperHoldsExpired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "sweeper_holds_expired_total",
			Help:        "Total number of holds reclaimed by the expiration sweeper",
			ConstLabels: constLabels,
		}, []string{"result"}),

		SweeperErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "sweeper_errors_total",
			Help:        "Total number of sweeper tick errors",
			ConstLabels: constLabels,
		}, []string{"stage"}),
	}
}

// IncHoldsExpired увеличивает счётчик реклеймленных холдов
func (m *Metrics) IncHoldsExpired(result string) {
	m.SweeperHoldsExpired.WithLabelValues(result).Inc()
}

// IncSweeperErrors увеличивает счётчик ошибок sweeper'а
func (m *Metrics) IncSweeperErrors(stage string) {
	m.SweeperErrors.WithLabelValues(stage).Inc()
}
