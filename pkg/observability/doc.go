// Package observability provides structured logging, Prometheus metrics,
// health checks and graceful shutdown for the billing engine.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("invoice_id", id).Info("invoice charged")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.ChargesTotal.WithLabelValues("success").Inc()
//	metrics.BillingRunDuration.Observe(runSeconds)
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(db)
//	mux.HandleFunc("/healthz", checker.Liveness)
//	mux.HandleFunc("/readyz", checker.Readiness)
//
// # Related Packages
//
//   - pkg/config: observability configuration
//   - pkg/api: request logging and metrics middleware
package observability
