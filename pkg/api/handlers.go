package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/httputil"
)

// listInvoices returns every invoice, optionally filtered by status
func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var invoices []billing.Invoice
	var err error
	if filter := httputil.ParseQueryString(r, "status", ""); filter != "" {
		status := billing.InvoiceStatus(strings.ToUpper(filter))
		switch status {
		case billing.InvoiceStatusPending, billing.InvoiceStatusPaid, billing.InvoiceStatusFailed:
		default:
			httputil.WriteBadRequest(w, "invalid status filter: "+filter)
			return
		}
		invoices, err = s.invoices.FetchInvoicesWithStatus(ctx, status)
	} else {
		invoices, err = s.invoices.FetchInvoices(ctx)
	}
	if err != nil {
		s.logger.WithError(err).Error("cannot list invoices")
		httputil.WriteInternalError(w, err)
		return
	}

	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	httputil.WriteSuccess(w, invoices)
}

// getInvoice returns a single invoice by id
func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	invoice, err := s.invoices.FetchInvoice(r.Context(), id)
	if errors.Is(err, billing.ErrInvoiceNotFound) {
		httputil.WriteNotFoundError(w, "invoice not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("cannot fetch invoice")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, invoice)
}

// listCustomers returns every customer
func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.FetchCustomers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("cannot list customers")
		httputil.WriteInternalError(w, err)
		return
	}

	if customers == nil {
		customers = []billing.Customer{}
	}
	httputil.WriteSuccess(w, customers)
}

// getCustomer returns a single customer by id
func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	customer, err := s.customers.FetchCustomer(r.Context(), id)
	if errors.Is(err, billing.ErrCustomerNotFound) {
		httputil.WriteNotFoundError(w, "customer not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("cannot fetch customer")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, customer)
}
