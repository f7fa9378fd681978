package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for resmod.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	// Stage metrics
	stageDuration *prometheus.HistogramVec

	// Derivation metrics
	modelsLoaded      *prometheus.CounterVec
	shapesResolved    prometheus.Counter
	schemasDerived    prometheus.Counter
	attributesDerived prometheus.Counter

	// Error metrics
	derivationErrors *prometheus.CounterVec

	// System metrics
	activeRuns    prometheus.Gauge
	storedSchemas prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	// Create a new registry
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		// Run metrics
		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Total number of derivation runs started",
			},
			[]string{"format"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of derivation runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of derivation runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		// Stage metrics
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of derivation pipeline stages in seconds",
				Buckets:   buckets,
			},
			[]string{"stage"},
		),

		// Derivation metrics
		modelsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "models_loaded_total",
				Help:      "Total number of model documents loaded",
			},
			[]string{"format"},
		),
		shapesResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shapes_resolved_total",
				Help:      "Total number of shapes resolved",
			},
		),
		schemasDerived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schemas_derived_total",
				Help:      "Total number of resource schemas derived",
			},
		),
		attributesDerived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attributes_derived_total",
				Help:      "Total number of attributes derived",
			},
		),

		// Error metrics
		derivationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "derivation_errors_total",
				Help:      "Total number of derivation errors by error code",
			},
			[]string{"code"},
		),

		// System metrics
		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Current number of active derivation runs",
			},
		),
		storedSchemas: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stored_schemas",
				Help:      "Current number of schemas held in the registry",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.stageDuration,
		m.modelsLoaded,
		m.shapesResolved,
		m.schemasDerived,
		m.attributesDerived,
		m.derivationErrors,
		m.activeRuns,
		m.storedSchemas,
	)

	return m, nil
}

// Run Metrics

// RecordRunStarted increments the counter for started derivation runs.
func (m *Metrics) RecordRunStarted(format string) {
	if m.runsStarted == nil {
		return
	}
	m.runsStarted.WithLabelValues(format).Inc()
	m.activeRuns.Inc()
}

// RecordRunCompleted records a completed run with its status and duration.
func (m *Metrics) RecordRunCompleted(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.activeRuns.Dec()
}

// Stage Metrics

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	if m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// Derivation Metrics

// RecordModelLoaded records one loaded model document.
func (m *Metrics) RecordModelLoaded(format string) {
	if m.modelsLoaded == nil {
		return
	}
	m.modelsLoaded.WithLabelValues(format).Inc()
}

// RecordShapesResolved adds to the resolved shape counter.
func (m *Metrics) RecordShapesResolved(count int) {
	if m.shapesResolved == nil {
		return
	}
	m.shapesResolved.Add(float64(count))
}

// RecordSchemasDerived records derived schema and attribute counts.
func (m *Metrics) RecordSchemasDerived(schemas, attributes int) {
	if m.schemasDerived == nil {
		return
	}
	m.schemasDerived.Add(float64(schemas))
	m.attributesDerived.Add(float64(attributes))
}

// Error Metrics

// RecordError records a derivation error by code.
func (m *Metrics) RecordError(code string) {
	if m.derivationErrors == nil {
		return
	}
	m.derivationErrors.WithLabelValues(code).Inc()
}

// System Metrics

// SetStoredSchemas sets the current number of schemas in the registry.
func (m *Metrics) SetStoredSchemas(count float64) {
	if m.storedSchemas == nil {
		return
	}
	m.storedSchemas.Set(count)
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
