package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/copperpot/duebill/pkg/async"
	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/httputil"
	"github.com/copperpot/duebill/pkg/schedule"
)

// billingRunTimeout bounds one background billing run.
const billingRunTimeout = 10 * time.Minute

type chargeResponse struct {
	InvoiceID int64               `json:"invoice_id"`
	Outcome   billing.OutcomeKind `json:"outcome"`
}

type periodicResponse struct {
	Active bool `json:"active"`
}

// chargeInvoice charges one invoice on demand. The request body is the
// invoice id as a plain number.
func (s *Server) chargeInvoice(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBodyString(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	invoiceID, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, fmt.Sprintf("invalid invoice id: %q", body))
		return
	}

	outcome, err := s.service.RequestPayment(r.Context(), invoiceID)
	if err != nil {
		s.logger.WithError(err).WithField("invoice_id", invoiceID).Error("payment request failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, chargeResponse{InvoiceID: invoiceID, Outcome: outcome})
}

// startBillingRun kicks off a full billing run in the background and
// returns immediately.
func (s *Server) startBillingRun(w http.ResponseWriter, r *http.Request) {
	async.SafeGoNoError(s.logger, billingRunTimeout, "billing run", s.runner.Run)
	httputil.WriteAccepted(w, map[string]string{"status": "started"})
}

// getPeriodicBilling reports whether a periodic schedule is active
func (s *Server) getPeriodicBilling(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, periodicResponse{Active: s.service.IsPeriodicBillingActive()})
}

// startPeriodicBilling arms the monthly schedule at a randomized time
func (s *Server) startPeriodicBilling(w http.ResponseWriter, r *http.Request) {
	if err := s.service.StartPeriodicBilling(); err != nil {
		s.logger.WithError(err).Error("cannot start periodic billing")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, periodicResponse{Active: true})
}

// setPeriodicBilling replaces the schedule. The request body is
// "day:hour:minute", for example "1:02:30".
func (s *Server) setPeriodicBilling(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBodyString(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	day, hour, minute, err := parseSchedule(body)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if err := s.service.SetPeriodicBilling(day, hour, minute); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, periodicResponse{Active: true})
}

// stopPeriodicBilling cancels the schedule. Idempotent.
func (s *Server) stopPeriodicBilling(w http.ResponseWriter, r *http.Request) {
	s.service.CancelPeriodicBilling()
	httputil.WriteSuccess(w, periodicResponse{Active: false})
}

// parseSchedule parses a "day:hour:minute" schedule string. Each field
// is one or two digits, and the values must form a valid day-of-month
// schedule. Rejecting out-of-range values here means a bad request
// never reaches the billing facade.
func parseSchedule(s string) (day, hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid schedule %q: want day:hour:minute", s)
	}

	fields := [3]int{}
	for i, part := range parts {
		if len(part) < 1 || len(part) > 2 {
			return 0, 0, 0, fmt.Errorf("invalid schedule %q: want day:hour:minute", s)
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return 0, 0, 0, fmt.Errorf("invalid schedule %q: want day:hour:minute", s)
			}
		}
		fields[i], _ = strconv.Atoi(part)
	}

	if err := schedule.Validate(fields[0], fields[1], fields[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid schedule %q: %w", s, err)
	}
	return fields[0], fields[1], fields[2], nil
}
