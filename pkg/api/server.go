package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/httputil"
	"github.com/copperpot/duebill/pkg/observability"
)

// maxRequestBody bounds request bodies. No route accepts more than a
// short schedule string or an invoice id.
const maxRequestBody = 4 * 1024

// Server represents our API server
type Server struct {
	service   *billing.Service
	runner    *billing.Runner
	invoices  billing.InvoiceStore
	customers billing.CustomerStore
	health    *observability.HealthChecker
	logger    *observability.Logger
	metrics   *observability.Metrics
	router    *mux.Router
}

// NewServer creates a new API server
func NewServer(service *billing.Service, runner *billing.Runner,
	invoices billing.InvoiceStore, customers billing.CustomerStore,
	health *observability.HealthChecker,
	logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		service:   service,
		runner:    runner,
		invoices:  invoices,
		customers: customers,
		health:    health,
		logger:    logger,
		metrics:   metrics,
		router:    mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.MetricsMiddleware(s.metrics),
		httputil.RecoveryMiddleware(s.logger),
		httputil.MaxBytesMiddleware(maxRequestBody),
	)

	s.router.HandleFunc("/rest/health", s.health.Readiness).Methods("GET")

	v1 := s.router.PathPrefix("/rest/v1").Subrouter()

	// Invoice routes
	v1.HandleFunc("/invoices", s.listInvoices).Methods("GET")
	v1.HandleFunc("/invoices/{id}", s.getInvoice).Methods("GET")

	// Customer routes
	v1.HandleFunc("/customers", s.listCustomers).Methods("GET")
	v1.HandleFunc("/customers/{id}", s.getCustomer).Methods("GET")

	// Billing routes
	v1.HandleFunc("/billing", s.chargeInvoice).Methods("POST")
	v1.HandleFunc("/billing/run", s.startBillingRun).Methods("POST")
	v1.HandleFunc("/billing/periodic", s.getPeriodicBilling).Methods("GET")
	v1.HandleFunc("/billing/periodic", s.startPeriodicBilling).Methods("POST")
	v1.HandleFunc("/billing/periodic", s.setPeriodicBilling).Methods("PUT")
	v1.HandleFunc("/billing/periodic", s.stopPeriodicBilling).Methods("DELETE")
}

// Router returns the configured handler for mounting in an http.Server
func (s *Server) Router() http.Handler {
	return s.router
}
