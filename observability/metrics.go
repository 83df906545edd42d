// Package observability exposes Prometheus metrics for the billing server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Billing metrics
	CallsTotal         *prometheus.CounterVec
	MonthsOpenedTotal  prometheus.Counter
	SettlementsTotal   *prometheus.CounterVec
	FilterRunsTotal    *prometheus.CounterVec
	CustomersTotal     prometheus.Gauge
	FilteredCallsCount prometheus.Histogram
}

// NewMetrics creates and registers all metrics on registry. A nil registry
// gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_calls_total",
				Help: "Calls replayed, by outcome (billed, skipped, failed)",
			},
			[]string{"outcome"},
		),
		MonthsOpenedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_months_opened_total",
				Help: "Billing months opened across the roster",
			},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_settlements_total",
				Help: "Contract cancellations, by plan",
			},
			[]string{"plan"},
		),
		FilterRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_filter_runs_total",
				Help: "Filter applications, by filter key",
			},
			[]string{"filter"},
		),
		CustomersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "billing_customers_total",
				Help: "Customers on the roster",
			},
		),
		FilteredCallsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billing_filtered_calls",
				Help:    "Number of calls returned by a filter pipeline",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.CallsTotal,
		m.MonthsOpenedTotal,
		m.SettlementsTotal,
		m.FilterRunsTotal,
		m.CustomersTotal,
		m.FilteredCallsCount,
	)

	return m
}

// ObserveReplay records the outcome counts of a history replay.
func (m *Metrics) ObserveReplay(billed, skipped, failed, months int) {
	m.CallsTotal.WithLabelValues("billed").Add(float64(billed))
	m.CallsTotal.WithLabelValues("skipped").Add(float64(skipped))
	m.CallsTotal.WithLabelValues("failed").Add(float64(failed))
	m.MonthsOpenedTotal.Add(float64(months))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments requests. Paths are labelled with the
// chi route pattern so ids in URLs do not create new series.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.bytesWritten))
		})
	}
}
