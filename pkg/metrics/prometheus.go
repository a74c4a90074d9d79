// Package metrics provides Prometheus metrics for the pose arena service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// accuracyBuckets splits 0..100 into the ten point bands.
var accuracyBuckets = prometheus.LinearBuckets(10, 10, 10) //nolint:gochecknoglobals // static bucket layout

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Gameplay
	samplesProcessed prometheus.Counter
	samplesSkipped   prometheus.Counter
	sampleAccuracy   prometheus.Histogram
	roundsResolved   *prometheus.CounterVec
	pointsAwarded    prometheus.Counter
	sessionsStarted  prometheus.Counter
	sessionsEnded    *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	// Judge
	judgeLatency  prometheus.Histogram
	judgeFailures prometheus.Counter

	// Leaderboard and storage
	leaderboardMerges       prometheus.Counter
	leaderboardCorruptLoads prometheus.Counter
	leaderboardEntries      prometheus.Gauge
	storeLatency            *prometheus.HistogramVec

	// Update queues
	queueEnqueued prometheus.Counter
	queueDequeued prometheus.Counter
	queueRejected *prometheus.CounterVec
	queueBacklog  prometheus.Gauge
	tickerFired   prometheus.Counter
	samplerPolled prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.samplesProcessed = m.counter("samples_processed_total", "Tracker samples applied to a round")
	m.samplesSkipped = m.counter("samples_skipped_total", "Tracker samples dropped because the previous one was still in flight")
	m.sampleAccuracy = m.histogram("sample_accuracy", "Accuracy of scored samples", accuracyBuckets)
	m.roundsResolved = m.counterVec("rounds_resolved_total", "Rounds resolved by outcome", "outcome")
	m.pointsAwarded = m.counter("points_awarded_total", "Points awarded across all rounds")
	m.sessionsStarted = m.counter("sessions_started_total", "Sessions started")
	m.sessionsEnded = m.counterVec("sessions_ended_total", "Sessions ended by state", "state")
	m.activeSessions = m.gauge("active_sessions", "Sessions currently running")

	m.judgeLatency = m.histogram("judge_latency_milliseconds", "External judge latency in milliseconds", m.histogramBuckets)
	m.judgeFailures = m.counter("judge_failures_total", "Judgements that failed and scored 0")

	m.leaderboardMerges = m.counter("leaderboard_merges_total", "Session summaries merged into the leaderboard")
	m.leaderboardCorruptLoads = m.counter("leaderboard_corrupt_loads_total", "Leaderboard loads that found unparsable state")
	m.leaderboardEntries = m.gauge("leaderboard_entries", "Entries in the persisted leaderboard")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Blob store latency in milliseconds", m.histogramBuckets, "op")

	m.queueEnqueued = m.counter("queue_enqueued_total", "Events accepted by session update queues")
	m.queueDequeued = m.counter("queue_dequeued_total", "Events consumed from session update queues")
	m.queueRejected = m.counterVec("queue_rejected_total", "Events refused by session update queues", "reason")
	m.queueBacklog = m.gauge("queue_backlog", "Events waiting across all session update queues")
	m.tickerFired = m.counter("deadline_checks_total", "Deadline check ticks emitted")
	m.samplerPolled = m.counter("tracker_polls_total", "Tracker polls issued by samplers")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Goroutines running")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds", m.histogramBuckets)
}

func on() bool { return globalManager != nil && globalManager.enabled }

// RecordSampleProcessed counts a scored sample and its accuracy.
func RecordSampleProcessed(accuracy int) {
	if on() {
		globalManager.samplesProcessed.Inc()
		globalManager.sampleAccuracy.Observe(float64(accuracy))
	}
}

// RecordSampleSkipped counts a sample dropped while another was in flight.
func RecordSampleSkipped() {
	if on() {
		globalManager.samplesSkipped.Inc()
	}
}

// RecordRoundResolved counts a resolution and the points it awarded.
func RecordRoundResolved(outcome string, points int) {
	if on() {
		globalManager.roundsResolved.WithLabelValues(outcome).Inc()
		globalManager.pointsAwarded.Add(float64(points))
	}
}

// RecordSessionStarted counts a started session.
func RecordSessionStarted() {
	if on() {
		globalManager.sessionsStarted.Inc()
	}
}

// RecordSessionEnded counts a finished or abandoned session.
func RecordSessionEnded(state string) {
	if on() {
		globalManager.sessionsEnded.WithLabelValues(state).Inc()
	}
}

// UpdateActiveSessions sets the running session gauge.
func UpdateActiveSessions(n int) {
	if on() {
		globalManager.activeSessions.Set(float64(n))
	}
}

// RecordJudgeLatency observes one judge call.
func RecordJudgeLatency(latencyMs float64) {
	if on() {
		globalManager.judgeLatency.Observe(latencyMs)
	}
}

// RecordJudgeFailure counts a judgement mapped to accuracy 0.
func RecordJudgeFailure() {
	if on() {
		globalManager.judgeFailures.Inc()
	}
}

// RecordLeaderboardMerge counts a merge and sets the entry gauge.
func RecordLeaderboardMerge(entries int) {
	if on() {
		globalManager.leaderboardMerges.Inc()
		globalManager.leaderboardEntries.Set(float64(entries))
	}
}

// RecordLeaderboardCorrupt counts an unparsable leaderboard load.
func RecordLeaderboardCorrupt() {
	if on() {
		globalManager.leaderboardCorruptLoads.Inc()
	}
}

// RecordStoreLatency observes one blob store call; op is get or set.
func RecordStoreLatency(op string, latencyMs float64) {
	if on() {
		globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordQueueEnqueue counts an accepted event.
func RecordQueueEnqueue() {
	if on() {
		globalManager.queueEnqueued.Inc()
		globalManager.queueBacklog.Inc()
	}
}

// RecordQueueDequeue counts a consumed event.
func RecordQueueDequeue() {
	if on() {
		globalManager.queueDequeued.Inc()
		globalManager.queueBacklog.Dec()
	}
}

// RecordQueueDiscarded lowers the backlog for events dropped at close.
func RecordQueueDiscarded(n int) {
	if on() && n > 0 {
		globalManager.queueBacklog.Sub(float64(n))
	}
}

// RecordQueueRejected counts a refused event.
func RecordQueueRejected(reason string) {
	if on() {
		globalManager.queueRejected.WithLabelValues(reason).Inc()
	}
}

// RecordTick counts an emitted deadline check.
func RecordTick() {
	if on() {
		globalManager.tickerFired.Inc()
	}
}

// RecordTrackerPoll counts a sampler poll.
func RecordTrackerPoll() {
	if on() {
		globalManager.samplerPolled.Inc()
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method string, statusCode int) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, statusCode int, durationMs float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes a GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if on() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration {
	if globalManager == nil {
		return defaultRefreshInterval
	}
	return globalManager.refreshInterval
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
