// Package metrics provides Prometheus metrics for the outbreak projection service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Simulation metrics
	simulations         *prometheus.CounterVec
	simulationsSkipped  prometheus.Counter
	simulationLatency   prometheus.Histogram
	simulationWeeks     prometheus.Histogram
	reductionPercent    prometheus.Histogram
	strategiesSelected  *prometheus.CounterVec
	unknownStrategies   prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheSize           prometheus.Gauge
	catalogSize         prometheus.Gauge
	simulationErrors    *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "outbreak",
		subsystem:        "projection",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.simulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulations_total"),
		Help:        "Total number of simulations by model",
		ConstLabels: labels,
	}, []string{"model"})

	m.simulationsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulations_unmitigated_total"),
		Help:        "Simulations where mitigation was absent, disabled or empty",
		ConstLabels: labels,
	})

	m.simulationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulation_latency_milliseconds"),
		Help:        "Time spent computing a simulation in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.simulationWeeks = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulation_weeks"),
		Help:        "Projection horizon in weeks",
		Buckets:     []float64{4, 8, 13, 26, 52, 104, 156, 260},
		ConstLabels: labels,
	})

	m.reductionPercent = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reduction_percent"),
		Help:        "Reduction of total cases achieved by mitigation",
		Buckets:     prometheus.LinearBuckets(0, 10, 11),
		ConstLabels: labels,
	})

	m.strategiesSelected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("strategies_selected_total"),
		Help:        "How often each strategy was selected",
		ConstLabels: labels,
	}, []string{"strategy"})

	m.unknownStrategies = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("strategies_unknown_total"),
		Help:        "Selected strategy ids with no catalog entry",
		ConstLabels: labels,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_hits_total"),
		Help:        "Simulations answered from the result cache",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_misses_total"),
		Help:        "Simulations computed because no cached result existed",
		ConstLabels: labels,
	})

	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_size"),
		Help:        "Current number of cached results",
		ConstLabels: labels,
	})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_size"),
		Help:        "Number of strategies in the active catalog",
		ConstLabels: labels,
	})

	m.simulationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulation_errors_total"),
		Help:        "Rejected simulation requests by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_type_total"),
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "Errors by HTTP endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordSimulation counts one simulation of the given model and its latency.
func (m *Manager) RecordSimulation(model string, weeks int, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.simulations.WithLabelValues(model).Inc()
	m.simulationWeeks.Observe(float64(weeks))
	m.simulationLatency.Observe(latencyMs)
}

// RecordReduction observes the reduction percent of a mitigated run.
func (m *Manager) RecordReduction(percent float64) {
	if !m.enabled {
		return
	}
	m.reductionPercent.Observe(percent)
}

// RecordUnmitigated counts a run that short-circuited to the baseline.
func (m *Manager) RecordUnmitigated() {
	if !m.enabled {
		return
	}
	m.simulationsSkipped.Inc()
}

// RecordStrategySelected counts a strategy selection. Unknown ids are pooled
// into one counter to keep label cardinality bounded.
func (m *Manager) RecordStrategySelected(id string, known bool) {
	if !m.enabled {
		return
	}
	if !known {
		m.unknownStrategies.Inc()
		return
	}
	m.strategiesSelected.WithLabelValues(id).Inc()
}

// RecordCacheHit counts a cached answer.
func (m *Manager) RecordCacheHit() {
	if m.enabled {
		m.cacheHits.Inc()
	}
}

// RecordCacheMiss counts a computed answer.
func (m *Manager) RecordCacheMiss() {
	if m.enabled {
		m.cacheMisses.Inc()
	}
}

// UpdateCacheSize sets the cache size gauge.
func (m *Manager) UpdateCacheSize(size int64) {
	if m.enabled {
		m.cacheSize.Set(float64(size))
	}
}

// UpdateCatalogSize sets the catalog size gauge.
func (m *Manager) UpdateCatalogSize(size int) {
	if m.enabled {
		m.catalogSize.Set(float64(size))
	}
}

// RecordSimulationError counts a rejected request.
func (m *Manager) RecordSimulationError(reason string) {
	if m.enabled {
		m.simulationErrors.WithLabelValues(reason).Inc()
	}
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts a failed HTTP request.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystem records process level gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordSimulation counts one simulation on the global manager.
func RecordSimulation(model string, weeks int, latencyMs float64) {
	globalManager.RecordSimulation(model, weeks, latencyMs)
}

// RecordReduction observes a reduction percent on the global manager.
func RecordReduction(percent float64) { globalManager.RecordReduction(percent) }

// RecordUnmitigated counts a short-circuited run on the global manager.
func RecordUnmitigated() { globalManager.RecordUnmitigated() }

// RecordStrategySelected counts a strategy selection on the global manager.
func RecordStrategySelected(id string, known bool) {
	globalManager.RecordStrategySelected(id, known)
}

// RecordCacheHit counts a cache hit on the global manager.
func RecordCacheHit() { globalManager.RecordCacheHit() }

// RecordCacheMiss counts a cache miss on the global manager.
func RecordCacheMiss() { globalManager.RecordCacheMiss() }

// UpdateCacheSize sets the cache size on the global manager.
func UpdateCacheSize(size int64) { globalManager.UpdateCacheSize(size) }

// UpdateCatalogSize sets the catalog size on the global manager.
func UpdateCatalogSize(size int) { globalManager.UpdateCatalogSize(size) }

// RecordSimulationError counts a rejected request on the global manager.
func RecordSimulationError(reason string) { globalManager.RecordSimulationError(reason) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an HTTP error on the global manager.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity)
}

// UpdateSystem records process gauges on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, avgGCPauseMs)
}

// RefreshInterval is how often the global gauges should be refreshed.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
