package observability

import (
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	engineComputes  *prometheus.CounterVec
	advisorTokens   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "expensesink_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		engineComputes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_engine_computes_total",
				Help: "Total aggregation engine runs by consuming operation.",
			},
			[]string{"operation"},
		),
		advisorTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_advisor_tokens_total",
				Help: "Total LLM tokens consumed by the advisor.",
			},
			[]string{"type"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expensesink_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrEngineCompute counts one aggregation run for an operation
// (dashboard, safe_to_spend, analytics, weekly_comparison, budgets).
func (m *Metrics) IncrEngineCompute(operation string) {
	m.engineComputes.WithLabelValues(operation).Inc()
}

// RecordAdvisorTokens records prompt and completion token usage.
func (m *Metrics) RecordAdvisorTokens(prompt, completion int) {
	m.advisorTokens.WithLabelValues("prompt").Add(float64(prompt))
	m.advisorTokens.WithLabelValues("completion").Add(float64(completion))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetEngineSnapshot returns a snapshot of engine-related metrics
// suitable for the GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	// Prometheus counters expose cumulative values, so the snapshot
	// covers the process lifetime.
	dashboard := getCounterValue(m.engineComputes, "dashboard")
	total := dashboard +
		getCounterValue(m.engineComputes, "safe_to_spend") +
		getCounterValue(m.engineComputes, "analytics") +
		getCounterValue(m.engineComputes, "weekly_comparison") +
		getCounterValue(m.engineComputes, "budgets")

	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "profile")
	cacheMisses := getCounterValue(m.cacheMisses, "profile")
	tokens := getCounterValue(m.advisorTokens, "prompt") +
		getCounterValue(m.advisorTokens, "completion")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.EngineMetrics{
		TotalComputes:     int64(total),
		DashboardComputes: int64(dashboard),
		ErrorRate:         errorRate,
		CacheHitRate:      cacheHitRate,
		AdvisorTokensUsed: int64(tokens),
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
