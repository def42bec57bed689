package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhizterkeyz/resultify-api/internal/models"
)

// MetricsService owns the Prometheus registry and a few atomic counters mirrored for JSON snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	reportStudents  prometheus.Histogram
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	reportCount          uint64
	transitionApplied    uint64
	transitionRefused    uint64
	notificationCount    uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by outcome",
		}, []string{"outcome"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cohort_report_duration_seconds",
			Help:    "Time spent computing cohort reports",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"view"}),
		reportStudents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cohort_report_students",
			Help:    "Number of students per computed cohort report",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "result_transitions_total",
			Help: "Bulk result lifecycle transitions by outcome",
		}, []string{"transition", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications by delivery outcome",
		}, []string{"outcome"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLatency, m.cacheWrite,
		m.cacheHitRatio, m.cacheLookups, m.reportDuration, m.reportStudents, m.transitions, m.notifications, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// ObserveHTTPRequest records request metrics.
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

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveReport records one computed cohort report.
func (m *MetricsService) ObserveReport(view models.ReportView, students int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(string(view)).Observe(duration.Seconds())
	m.reportStudents.Observe(float64(students))
	atomic.AddUint64(&m.reportCount, 1)
}

// RecordTransition counts a lifecycle transition attempt.
func (m *MetricsService) RecordTransition(t models.Transition, applied bool) {
	if m == nil {
		return
	}
	outcome := "refused"
	if applied {
		outcome = "applied"
		atomic.AddUint64(&m.transitionApplied, 1)
	} else {
		atomic.AddUint64(&m.transitionRefused, 1)
	}
	m.transitions.WithLabelValues(string(t), outcome).Inc()
}

// RecordNotification counts a notification delivery attempt.
func (m *MetricsService) RecordNotification(delivered bool) {
	if m == nil {
		return
	}
	if delivered {
		m.notifications.WithLabelValues("delivered").Inc()
		atomic.AddUint64(&m.notificationCount, 1)
		return
	}
	m.notifications.WithLabelValues("failed").Inc()
}

// Snapshot returns aggregated counters for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheHitRatio:            ratio,
		ReportsBuilt:             atomic.LoadUint64(&m.reportCount),
		TransitionsApplied:       atomic.LoadUint64(&m.transitionApplied),
		TransitionsRefused:       atomic.LoadUint64(&m.transitionRefused),
		NotificationsSent:        atomic.LoadUint64(&m.notificationCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
