package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot summarises process metrics for the JSON status endpoint.
type MetricsSnapshot struct {
	RequestsTotal             uint64    `json:"requests_total"`
	AverageRequestDurationMs  float64   `json:"average_request_duration_ms"`
	RemoteCallsTotal          uint64    `json:"remote_calls_total"`
	RemoteFailuresTotal       uint64    `json:"remote_failures_total"`
	AverageRemoteCallDuration float64   `json:"average_remote_call_duration_ms"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and keeps running
// totals for snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	remoteTotal     *prometheus.CounterVec
	sessionLoads    *prometheus.CounterVec
	auditJobs       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	remoteCount          uint64
	remoteFailures       uint64
	remoteDurationTotal  uint64
}

// NewMetricsService registers the collectors.
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

	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_api_call_duration_seconds",
		Help:    "Duration of calls to the course API",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	remoteTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_api_calls_total",
		Help: "Calls to the course API by operation and outcome",
	}, []string{"operation", "status", "outcome"})

	sessionLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_loads_total",
		Help: "Session lookups by result",
	}, []string{"result"})

	auditJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_jobs_total",
		Help: "Audit jobs processed by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, remoteDuration, remoteTotal, sessionLoads, auditJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		remoteDuration:  remoteDuration,
		remoteTotal:     remoteTotal,
		sessionLoads:    sessionLoads,
		auditJobs:       auditJobs,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
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

// ObserveRemoteCall records one course API call. status is 0 when no
// response was received.
func (m *MetricsService) ObserveRemoteCall(operation string, status int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		atomic.AddUint64(&m.remoteFailures, 1)
	}
	m.remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.remoteTotal.WithLabelValues(operation, fmt.Sprintf("%d", status), outcome).Inc()
	atomic.AddUint64(&m.remoteCount, 1)
	atomic.AddUint64(&m.remoteDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordSessionLoad counts session lookups; hit is false for new sessions.
func (m *MetricsService) RecordSessionLoad(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.sessionLoads.WithLabelValues(result).Inc()
}

// RecordAuditJob counts processed audit jobs.
func (m *MetricsService) RecordAuditJob(err error) {
	if m == nil {
		return
	}
	outcome := "stored"
	if err != nil {
		outcome = "failed"
	}
	m.auditJobs.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated totals.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	remote := atomic.LoadUint64(&m.remoteCount)
	remoteDuration := atomic.LoadUint64(&m.remoteDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	var avgRemoteMs float64
	if remote > 0 {
		avgRemoteMs = float64(remoteDuration) / float64(remote) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:             requests,
		AverageRequestDurationMs:  avgRequestMs,
		RemoteCallsTotal:          remote,
		RemoteFailuresTotal:       atomic.LoadUint64(&m.remoteFailures),
		AverageRemoteCallDuration: avgRemoteMs,
		Goroutines:                runtime.NumGoroutine(),
		GeneratedAt:               time.Now().UTC(),
	}
}
