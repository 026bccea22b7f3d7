package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse metrics.
var (
	ParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "furi_parse_total",
		Help: "Furigana strings parsed by result (ok or error kind)",
	}, []string{"result"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "furi_parse_duration_seconds",
		Help:    "Time to parse a single furigana string",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	SegmentsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furi_segments_parsed_total",
		Help: "Segments produced by successful parses",
	})
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "furi_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "furi_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furi_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})

	DocumentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "furi_document_submissions_total",
		Help: "Document submissions by result",
	}, []string{"result"})
)

// Worker metrics.
var (
	RevalidateCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "furi_worker_revalidate_duration_seconds",
		Help:    "Duration of each worker revalidation cycle",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	})

	DocumentsProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_worker_documents_processed",
		Help: "Number of documents processed in last revalidation cycle",
	})

	DocumentsInvalid = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_worker_documents_invalid",
		Help: "Number of stored documents that failed to parse in last cycle",
	})

	DocumentsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furi_worker_documents_updated_total",
		Help: "Documents whose derived fields were rewritten by the worker",
	})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "furi_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
