package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	checkoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_sessions_total",
			Help: "Checkout sessions created, by purchase type.",
		},
		[]string{"type"},
	)

	finalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_finalizations_total",
			Help: "Order finalization runs, by terminal state.",
		},
		[]string{"state"},
	)

	reconciliationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_reconciliation_records_total",
			Help: "Payments that succeeded without a persisted order.",
		},
	)

	chatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_chat_replies_total",
			Help: "Assistant replies, by outcome.",
		},
		[]string{"outcome"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_lookups_total",
			Help: "Redis cache reads, by key prefix and result.",
		},
		[]string{"prefix", "result"},
	)

	tryOnJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_tryon_jobs_total",
			Help: "Virtual try-on jobs, by outcome.",
		},
		[]string{"outcome"},
	)
)

func RecordCheckoutSession(purchaseType string) {
	checkoutSessionsTotal.WithLabelValues(purchaseType).Inc()
}

func RecordFinalization(state string) {
	finalizationsTotal.WithLabelValues(state).Inc()
}

// RecordReconciliation counts money that moved without an order. Alert on any
// increase.
func RecordReconciliation() {
	reconciliationsTotal.Inc()
}

func RecordChatReply(outcome string) {
	chatRepliesTotal.WithLabelValues(outcome).Inc()
}

func RecordTryOn(outcome string) {
	tryOnJobsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup takes one of "hit", "miss", "corrupt" or "error".
func RecordCacheLookup(prefix, result string) {
	cacheLookupsTotal.WithLabelValues(prefix, result).Inc()
}

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)

		pathPattern := r.URL.Path
		if p := r.PathValue("..."); p != "" {

			pathPattern = r.URL.Path[:len(r.URL.Path)-len(p)] + "{...}"

		} else if id := r.PathValue("id"); id != "" {

			pathPattern = r.URL.Path[:len(r.URL.Path)-len(id)] + "{id}"

		}

		defer func() {

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, pathPattern).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, pathPattern).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
