// Package metrics provides Prometheus metrics for extraction runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes
const (
	StatusSuccess     = "success"
	StatusNoEquipment = "no_equipment"
	StatusError       = "error"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchgear_runs_total",
			Help: "Total number of extraction runs",
		},
		[]string{"source", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "switchgear_run_duration_seconds",
			Help:    "Time taken for one extraction run",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	PagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchgear_pages_processed_total",
			Help: "Total number of PDF pages scanned",
		},
		[]string{"source"},
	)

	ItemsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchgear_items_extracted_total",
			Help: "Total number of equipment items extracted",
		},
		[]string{"source", "type"},
	)

	// Upload metrics
	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchgear_uploads_rejected_total",
			Help: "Total number of uploads rejected before extraction",
		},
		[]string{"reason"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "switchgear_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "switchgear_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Recorder records run metrics for one entry point (http, mcp, cli)
type Recorder struct {
	source string
}

// NewRecorder creates a recorder labelled with source
func NewRecorder(source string) *Recorder {
	return &Recorder{source: source}
}

// Source returns the source label
func (r *Recorder) Source() string {
	return r.source
}

// RecordRun records the outcome and duration of a run
func (r *Recorder) RecordRun(status string, pages int, duration time.Duration) {
	RunsTotal.WithLabelValues(r.source, status).Inc()
	RunDuration.WithLabelValues(r.source).Observe(duration.Seconds())
	if pages > 0 {
		PagesProcessed.WithLabelValues(r.source).Add(float64(pages))
	}
}

// RecordItems records the number of items of one type
func (r *Recorder) RecordItems(equipmentType string, n int) {
	if n <= 0 {
		return
	}
	ItemsExtracted.WithLabelValues(r.source, equipmentType).Add(float64(n))
}

// RecordRejection records an upload rejected for reason
func RecordRejection(reason string) {
	UploadsRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records one served HTTP request
func RecordRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
