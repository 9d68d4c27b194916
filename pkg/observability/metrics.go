package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Charge metrics
	ChargesTotal       *prometheus.CounterVec
	ChargeRetriesTotal prometheus.Counter
	ConversionsTotal   *prometheus.CounterVec

	// Billing run metrics
	BillingRunsTotal       *prometheus.CounterVec
	BillingRunDuration     prometheus.Histogram
	InvoicesProcessedTotal *prometheus.CounterVec
	PendingInvoices        prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duebill_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duebill_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duebill_charges_total",
				Help: "Terminal charge results by outcome",
			},
			[]string{"outcome"},
		),
		ChargeRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duebill_charge_retries_total",
				Help: "Charge attempts retried after a transient network failure",
			},
		),
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duebill_currency_conversions_total",
				Help: "Currency conversion attempts by result",
			},
			[]string{"result"},
		),
		BillingRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duebill_billing_runs_total",
				Help: "Batch billing runs by result",
			},
			[]string{"result"},
		),
		BillingRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "duebill_billing_run_duration_seconds",
				Help:    "Batch billing run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		InvoicesProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duebill_invoices_processed_total",
				Help: "Invoices driven to a terminal status, by status",
			},
			[]string{"status"},
		),
		PendingInvoices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "duebill_pending_invoices",
				Help: "Number of pending invoices seen by the last billing run",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChargesTotal,
		m.ChargeRetriesTotal,
		m.ConversionsTotal,
		m.BillingRunsTotal,
		m.BillingRunDuration,
		m.InvoicesProcessedTotal,
		m.PendingInvoices,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
