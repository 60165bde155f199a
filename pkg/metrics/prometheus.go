// Package metrics provides Prometheus metrics for the meetglobe service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Identity
	membersCreated  prometheus.Counter
	memberDedupHits prometheus.Counter
	memberMigrated  prometheus.Counter
	missingMembers  prometheus.Counter

	// Meetings
	meetingsCreated   prometheus.Counter
	meetingsDeleted   prometheus.Counter
	meetingCollisions prometheus.Counter
	corruptRecords    *prometheus.CounterVec

	// Geography
	unresolvedCities  prometheus.Counter
	cityCacheSize     prometheus.Gauge
	cityCacheLoads    *prometheus.CounterVec
	cityCacheLoadTime prometheus.Histogram

	// Visualization
	vizPoints      prometheus.Histogram
	vizArcs        prometheus.Histogram
	vizComputeTime prometheus.Histogram

	// Persistence and messaging
	storeLatency    *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	eventQueueSize  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "meetglobe",
		subsystem:        "core",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	sizeBuckets := []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500}
	arcBuckets := prometheus.ExponentialBuckets(1, 4, 10)

	m.membersCreated = m.counter("members_created_total", "Members created by find-or-create")
	m.memberDedupHits = m.counter("member_dedup_hits_total", "Find-or-create calls that matched an existing member")
	m.memberMigrated = m.counter("member_ids_migrated_total", "Legacy member records assigned an ID at load time")
	m.missingMembers = m.counter("missing_members_total", "Roster member IDs with no member record during visualization")

	m.meetingsCreated = m.counter("meetings_created_total", "Meetings created")
	m.meetingsDeleted = m.counter("meetings_deleted_total", "Meetings deleted")
	m.meetingCollisions = m.counter("meeting_id_collisions_total", "Meeting IDs that needed a numeric suffix")
	m.corruptRecords = m.counterVec("corrupt_records_total", "Stored records that failed to decode or validate", "collection")

	m.unresolvedCities = m.counter("unresolved_cities_total", "City lookups that found no coordinates")
	m.cityCacheSize = m.gauge("city_cache_size", "Cities held by the resolver cache")
	m.cityCacheLoads = m.counterVec("city_cache_loads_total", "City dataset loads by result", "result")
	m.cityCacheLoadTime = m.histogram("city_cache_load_duration_milliseconds", "City dataset load time", m.histogramBuckets)

	m.vizPoints = m.histogram("visualization_points", "Points per computed visualization", sizeBuckets)
	m.vizArcs = m.histogram("visualization_arcs", "Arcs per computed visualization", arcBuckets)
	m.vizComputeTime = m.histogram("visualization_compute_duration_milliseconds", "Visualization compute time", m.histogramBuckets)

	m.storeLatency = m.histogramVec("store_operation_duration_milliseconds", "Record store operation latency", m.histogramBuckets, "driver", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Record store operation failures", "driver", "op")
	m.eventsPublished = m.counterVec("events_published_total", "Lifecycle events published by subject and result", "subject", "result")
	m.eventsDropped = m.counterVec("events_dropped_total", "Lifecycle events dropped before publishing", "reason")
	m.eventQueueSize = m.gauge("event_queue_size", "Lifecycle events waiting to be published")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request latency", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100})
}

// RecordMemberCreated increments the members created counter.
func RecordMemberCreated() { globalManager.membersCreated.Inc() }

// RecordMemberDedupHit increments the dedup hit counter.
func RecordMemberDedupHit() { globalManager.memberDedupHits.Inc() }

// RecordMemberMigrated adds n legacy members that were assigned IDs.
func RecordMemberMigrated(n int) { globalManager.memberMigrated.Add(float64(n)) }

// RecordMissingMember increments the missing roster member counter.
func RecordMissingMember() { globalManager.missingMembers.Inc() }

// RecordMeetingCreated increments the meetings created counter.
func RecordMeetingCreated() { globalManager.meetingsCreated.Inc() }

// RecordMeetingDeleted increments the meetings deleted counter.
func RecordMeetingDeleted() { globalManager.meetingsDeleted.Inc() }

// RecordMeetingCollision increments the meeting ID collision counter.
func RecordMeetingCollision() { globalManager.meetingCollisions.Inc() }

// RecordCorruptRecord counts a record in collection that failed to decode or validate.
func RecordCorruptRecord(collection string) {
	globalManager.corruptRecords.WithLabelValues(collection).Inc()
}

// RecordUnresolvedCity increments the unresolved city counter.
func RecordUnresolvedCity() { globalManager.unresolvedCities.Inc() }

// UpdateCityCacheSize sets the number of cached cities.
func UpdateCityCacheSize(n int) { globalManager.cityCacheSize.Set(float64(n)) }

// RecordCityCacheLoad records a dataset load outcome and its duration.
func RecordCityCacheLoad(ok bool, durationMs float64) {
	result := "ok"
	if !ok {
		result = "error"
	}
	globalManager.cityCacheLoads.WithLabelValues(result).Inc()
	globalManager.cityCacheLoadTime.Observe(durationMs)
}

// RecordVisualization records the size of a computed graph and how long it took.
func RecordVisualization(points, arcs int, durationMs float64) {
	globalManager.vizPoints.Observe(float64(points))
	globalManager.vizArcs.Observe(float64(arcs))
	globalManager.vizComputeTime.Observe(durationMs)
}

// RecordStoreOperation records a record store call against driver.
func RecordStoreOperation(driver, op string, durationMs float64, err error) {
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(durationMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(driver, op).Inc()
	}
}

// RecordEventPublished records a lifecycle event publish attempt.
func RecordEventPublished(subject string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.eventsPublished.WithLabelValues(subject, result).Inc()
}

// RecordEventDropped records a lifecycle event that never reached the publisher.
func RecordEventDropped(reason string) { globalManager.eventsDropped.WithLabelValues(reason).Inc() }

// UpdateEventQueueSize sets the number of queued lifecycle events.
func UpdateEventQueueSize(n int) { globalManager.eventQueueSize.Set(float64(n)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType increments errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
