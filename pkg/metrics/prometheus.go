// Package metrics provides Prometheus metrics for the podium simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcome label values.
const (
	OutcomeCompleted = "completed"
	OutcomeEmpty     = "empty"
	OutcomeInvalid   = "invalid"
	OutcomeCanceled  = "canceled"
)

// Manager manages all Prometheus metrics for the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Simulation metrics
	runsTotal        *prometheus.CounterVec
	trialsCompleted  prometheus.Counter
	tiedTrials       prometheus.Counter
	runDuration      prometheus.Histogram
	batchLatency     prometheus.Histogram
	rosterSize       prometheus.Gauge
	runsInFlight     prometheus.Gauge
	lastRunTrials    prometheus.Gauge
	lastRunProgress  prometheus.Gauge
	remainingEvents  prometheus.Histogram
	intakeRejections *prometheus.CounterVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerActiveCount prometheus.Gauge
	workerErrorRate   prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Latency buckets in milliseconds, from a single batch up to a large run.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // shared bucket layout

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithNamespace("podium"),
		WithSubsystem("simulator"),
		WithHistogramBuckets(latencyBuckets),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a new metrics manager. Without options metrics carry no
// namespace, use prometheus.DefBuckets and register on the default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(m.counterOpts("runs_total", "Monte Carlo runs by outcome"), []string{"outcome"})
	m.trialsCompleted = auto.NewCounter(m.counterOpts("trials_completed_total", "Season trials simulated"))
	m.tiedTrials = auto.NewCounter(m.counterOpts("tied_trials_total", "Trials that ended with co-champions"))
	m.runDuration = auto.NewHistogram(m.histogramOpts("run_duration_milliseconds", "Wall time of a Monte Carlo run in milliseconds", m.histogramBuckets))
	m.batchLatency = auto.NewHistogram(m.histogramOpts("batch_latency_milliseconds", "Time to simulate one batch of trials in milliseconds", m.histogramBuckets))
	m.rosterSize = auto.NewGauge(m.gaugeOpts("roster_size", "Competitors in the most recent run"))
	m.runsInFlight = auto.NewGauge(m.gaugeOpts("runs_in_flight", "Monte Carlo runs currently executing"))
	m.lastRunTrials = auto.NewGauge(m.gaugeOpts("last_run_trials", "Trial count requested by the most recent run"))
	m.lastRunProgress = auto.NewGauge(m.gaugeOpts("last_run_progress_ratio", "Completed fraction of the most recent run"))
	m.remainingEvents = auto.NewHistogram(m.histogramOpts("remaining_events", "Remaining events requested per run", []float64{0, 1, 2, 5, 10, 15, 20, 30}))
	m.intakeRejections = auto.NewCounterVec(m.counterOpts("intake_rejections_total", "Rosters rejected by intake validation"), []string{"source"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Batches waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of batches enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of batches dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of active trial workers"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRateLimited = auto.NewCounter(m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Simulation Metrics Functions.

// RecordRun increments the run counter for an outcome.
func RecordRun(outcome string) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordRunDuration records the wall time of a run.
func RecordRunDuration(ms float64) {
	globalManager.runDuration.Observe(ms)
}

// RecordTrials adds completed and tied trial counts.
func RecordTrials(completed, tied int) {
	globalManager.trialsCompleted.Add(float64(completed))
	globalManager.tiedTrials.Add(float64(tied))
}

// RecordBatchLatency records the time taken by one batch.
func RecordBatchLatency(ms float64) {
	globalManager.batchLatency.Observe(ms)
}

// RecordRunStarted updates gauges describing a run that is starting.
func RecordRunStarted(competitors, remainingEvents, trials int) {
	globalManager.runsInFlight.Inc()
	globalManager.rosterSize.Set(float64(competitors))
	globalManager.lastRunTrials.Set(float64(trials))
	globalManager.lastRunProgress.Set(0)
	globalManager.remainingEvents.Observe(float64(remainingEvents))
}

// RecordRunFinished decrements the in-flight gauge.
func RecordRunFinished() {
	globalManager.runsInFlight.Dec()
}

// UpdateRunProgress sets the completed fraction of the current run.
func UpdateRunProgress(ratio float64) {
	globalManager.lastRunProgress.Set(ratio)
}

// RecordIntakeRejection counts a roster rejected by validation.
func RecordIntakeRejection(source string) {
	globalManager.intakeRejections.WithLabelValues(source).Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	globalManager.httpRateLimited.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
