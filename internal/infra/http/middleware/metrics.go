package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_reconciliations_total",
			Help: "Checkout reconciliations by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	statusFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_normalizer_fallback_total",
			Help: "Gateway statuses not covered by the normalizer mapping",
		},
		[]string{"raw_status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão da rota do chi para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// PrometheusRecorder expõe os contadores de reconciliação para a camada de usecase.
type PrometheusRecorder struct{}

func (PrometheusRecorder) RecordReconciliation(source, outcome string) {
	reconciliationsTotal.WithLabelValues(source, outcome).Inc()
}

func (PrometheusRecorder) RecordStatusFallback(raw string) {
	statusFallbacks.WithLabelValues(fallbackLabels.label(raw)).Inc()
}

func (PrometheusRecorder) RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

const (
	maxFallbackLabels   = 20
	maxFallbackLabelLen = 32
	otherFallbackLabel  = "other"
)

var fallbackLabels = newLabelSet(maxFallbackLabels)

// labelSet limita os valores de raw_status: o status vem do gateway e não
// pode criar séries sem limite.
type labelSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	limit int
}

func newLabelSet(limit int) *labelSet {
	return &labelSet{seen: make(map[string]struct{}), limit: limit}
}

func (l *labelSet) label(raw string) string {
	v := strings.ToValidUTF8(strings.ToUpper(strings.TrimSpace(raw)), "")
	if r := []rune(v); len(r) > maxFallbackLabelLen {
		v = string(r[:maxFallbackLabelLen])
	}
	if v == "" {
		return otherFallbackLabel
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[v]; ok {
		return v
	}
	if len(l.seen) >= l.limit {
		return otherFallbackLabel
	}
	l.seen[v] = struct{}{}
	return v
}
