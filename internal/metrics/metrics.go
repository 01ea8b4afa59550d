package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration prometheus.Histogram

	RetryAttemptsTotal  *prometheus.CounterVec
	RateLimitWaitsTotal prometheus.Counter

	RequestsInFlight prometheus.Gauge
	ActiveOperations prometheus.Gauge

	HealthState      prometheus.Gauge
	HealthErrors     prometheus.Counter
	RecoveryAttempts prometheus.Counter

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	CombinedResultCount prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_mcp_search_requests_total",
				Help: "Total number of upstream search requests",
			},
			[]string{"status"},
		),
		SearchRequestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "research_mcp_search_request_duration_seconds",
				Help:    "Upstream search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		RetryAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_mcp_retry_attempts_total",
				Help: "Total number of failed attempts that triggered a retry",
			},
			[]string{"operation"},
		),
		RateLimitWaitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_mcp_rate_limit_waits_total",
				Help: "Total number of admissions that had to wait for tokens",
			},
		),

		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_mcp_requests_in_flight",
				Help: "Number of queries currently being processed",
			},
		),
		ActiveOperations: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_mcp_active_operations",
				Help: "Number of admitted operations in the scheduler",
			},
		),

		HealthState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "research_mcp_health_state",
				Help: "Connection health state (0=disconnected 1=connecting 2=connected 3=recovering 4=error)",
			},
		),
		HealthErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_mcp_health_errors_total",
				Help: "Total number of errors recorded against upstream health",
			},
		),
		RecoveryAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_mcp_recovery_attempts_total",
				Help: "Total number of health recovery attempts",
			},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_mcp_cache_hits_total",
				Help: "Total number of search cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_mcp_cache_misses_total",
				Help: "Total number of search cache misses",
			},
		),

		CombinedResultCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "research_mcp_combined_result_count",
				Help:    "Number of unique results after combining fan-out payloads",
				Buckets: []float64{0, 2, 4, 8, 12, 16, 24, 32},
			},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordSearchRequest(status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
	m.SearchRequestDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordRetryAttempt(operation string) {
	m.RetryAttemptsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordRateLimitWait() {
	m.RateLimitWaitsTotal.Inc()
}

func (m *Metrics) RecordCacheHit()  { m.CacheHitsTotal.Inc() }
func (m *Metrics) RecordCacheMiss() { m.CacheMissesTotal.Inc() }

func (m *Metrics) SetHealthState(state float64) { m.HealthState.Set(state) }

func (m *Metrics) IncRequestsInFlight() { m.RequestsInFlight.Inc() }
func (m *Metrics) DecRequestsInFlight() { m.RequestsInFlight.Dec() }

func (m *Metrics) IncActiveOperations() { m.ActiveOperations.Inc() }
func (m *Metrics) DecActiveOperations() { m.ActiveOperations.Dec() }

func (m *Metrics) ObserveCombinedResults(count int) {
	m.CombinedResultCount.Observe(float64(count))
}
