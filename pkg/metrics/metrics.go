// Package metrics defines the Prometheus instrumentation for the
// network analysis service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "logistics",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	// AnalysesTotal counts pipeline runs by transport mode and outcome
	// status ("ok", "no_data", "error").
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "pipeline",
		Name:      "analyses_total",
		Help:      "Total network analyses run",
	}, []string{"mode", "status"})

	// AnalysisDuration tracks wall time per pipeline run.
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "logistics",
		Subsystem: "pipeline",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of network analyses",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"mode"})

	// EdgesTotal counts produced tree edges by refinement status
	// ("refined", "fallback").
	EdgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "pipeline",
		Name:      "edges_total",
		Help:      "Total network edges produced, by refinement status",
	}, []string{"status"})

	// FacilitiesExtracted counts facility points that entered the
	// pipeline, by mode.
	FacilitiesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "pipeline",
		Name:      "facilities_extracted_total",
		Help:      "Total facility points extracted",
	}, []string{"mode"})

	// CacheHits / CacheMisses count feature cache lookups.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total feature cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logistics",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total feature cache misses",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder captures the response code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency per route pattern.
// pathFn maps a request to its route pattern to keep label cardinality
// bounded.
func Middleware(pathFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := pathFn(r)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}
