package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-registry-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// caching and enrollment activity, and exposes lightweight snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	enrollments     *prometheus.CounterVec
	drops           *prometheus.CounterVec
	loads           *prometheus.CounterVec
	archive         *prometheus.CounterVec
	exports         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	enrolledCount        uint64
	waitlistedCount      uint64
	promotionCount       uint64
	archivedCount        uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	enrollments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_enrollments_total",
		Help: "Enrollment attempts by outcome",
	}, []string{"outcome"})

	drops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_drops_total",
		Help: "Successful drops, labelled by whether the waitlist head was promoted",
	}, []string{"promoted"})

	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_bulk_records_total",
		Help: "Records applied by bulk loads",
	}, []string{"record"})

	archive := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_activity_archive_total",
		Help: "Activity archive outcomes",
	}, []string{"result"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_exports_total",
		Help: "Rendered exports by kind and format",
	}, []string{"kind", "format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		enrollments, drops, loads, archive, exports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		enrollments:     enrollments,
		drops:           drops,
		loads:           loads,
		archive:         archive,
		exports:         exports,
	}
}

// RegisterRegistryGauges exposes live registry totals read through stats on every scrape.
func (m *MetricsService) RegisterRegistryGauges(stats func() models.Statistics) {
	if m == nil || stats == nil {
		return
	}
	gauge := func(name, help string, pick func(models.Statistics) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(pick(stats()))
		})
	}
	m.registry.MustRegister(
		gauge("registry_students", "Registered students", func(s models.Statistics) int { return s.TotalStudents }),
		gauge("registry_courses", "Registered courses", func(s models.Statistics) int { return s.TotalCourses }),
		gauge("registry_enrollments", "Active enrollments", func(s models.Statistics) int { return s.TotalEnrollments }),
		gauge("registry_activity_entries", "Activity log length", func(s models.Statistics) int { return s.TotalActivities }),
	)
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordEnrollment counts one enrollment attempt.
func (m *MetricsService) RecordEnrollment(outcome models.EnrollOutcome) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(string(outcome)).Inc()
	switch outcome {
	case models.EnrollOutcomeEnrolled:
		atomic.AddUint64(&m.enrolledCount, 1)
	case models.EnrollOutcomeWaitlisted:
		atomic.AddUint64(&m.waitlistedCount, 1)
	}
}

// RecordDrop counts one successful drop.
func (m *MetricsService) RecordDrop(result models.DropResult) {
	if m == nil {
		return
	}
	promoted := result.PromotedID != ""
	m.drops.WithLabelValues(fmt.Sprintf("%t", promoted)).Inc()
	if promoted {
		atomic.AddUint64(&m.promotionCount, 1)
	}
}

// RecordLoad counts the records applied by one bulk load.
func (m *MetricsService) RecordLoad(summary models.LoadSummary) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues("student").Add(float64(summary.StudentsLoaded))
	m.loads.WithLabelValues("course").Add(float64(summary.CoursesLoaded))
	m.loads.WithLabelValues("enrollment").Add(float64(summary.EnrollmentsLoaded))
}

// RecordArchive counts an activity archive outcome: stored, failed or dropped.
func (m *MetricsService) RecordArchive(result string) {
	if m == nil {
		return
	}
	m.archive.WithLabelValues(result).Inc()
	if result == ArchiveStored {
		atomic.AddUint64(&m.archivedCount, 1)
	}
}

// RecordExport counts one rendered export.
func (m *MetricsService) RecordExport(kind models.ExportKind, format models.ReportFormat) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(kind), string(format)).Inc()
}

// Snapshot returns aggregated metrics suitable for the statistics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		EnrollmentsTotal:         atomic.LoadUint64(&m.enrolledCount),
		WaitlistedTotal:          atomic.LoadUint64(&m.waitlistedCount),
		PromotionsTotal:          atomic.LoadUint64(&m.promotionCount),
		ArchivedTotal:            atomic.LoadUint64(&m.archivedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
