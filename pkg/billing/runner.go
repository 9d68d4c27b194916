package billing

import (
	"context"
	"time"

	"github.com/copperpot/duebill/pkg/observability"
)

// Runner executes one batch billing pass: every PENDING invoice is
// orchestrated to a terminal outcome, then marked and notified. It is
// the task body the scheduler fires.
type Runner struct {
	orchestrator *Orchestrator
	invoices     InvoiceStore
	notifier     Notifier
	logger       *observability.Logger
	metrics      *observability.Metrics
}

// NewRunner creates a Runner.
func NewRunner(orchestrator *Orchestrator, invoices InvoiceStore, notifier Notifier,
	logger *observability.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		orchestrator: orchestrator,
		invoices:     invoices,
		notifier:     notifier,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run charges all pending invoices sequentially. One invoice's failures
// never abort the rest of the batch: orchestration is bounded per
// invoice, and a store error while marking an outcome is logged and
// skipped rather than propagated.
func (r *Runner) Run(ctx context.Context) {
	start := time.Now()
	r.logger.Info("starting billing run")

	pending, err := r.invoices.FetchInvoicesWithStatus(ctx, InvoiceStatusPending)
	if err != nil {
		r.logger.WithError(err).Error("cannot fetch pending invoices, aborting billing run")
		r.metrics.BillingRunsTotal.WithLabelValues("error").Inc()
		return
	}

	r.logger.Infof("pending invoices: %d", len(pending))
	r.metrics.PendingInvoices.Set(float64(len(pending)))

	outcomes := make([]PaymentOutcome, 0, len(pending))
	for _, invoice := range pending {
		outcomes = append(outcomes, r.orchestrator.TryPaymentRequest(ctx, invoice))
	}

	var paid, failed int
	for _, outcome := range outcomes {
		if outcome.Paid {
			paid++
			r.settle(ctx, outcome, InvoiceStatusPaid)
		} else {
			failed++
			r.settle(ctx, outcome, InvoiceStatusFailed)
		}
	}

	r.metrics.BillingRunsTotal.WithLabelValues("ok").Inc()
	r.metrics.BillingRunDuration.Observe(time.Since(start).Seconds())
	r.logger.Infof("billing run finished: paid=%d failed=%d", paid, failed)
}

// settle persists the terminal status and sends the matching
// notification. When the update fails the notification is withheld so
// the sink never hears about a status that was not recorded.
func (r *Runner) settle(ctx context.Context, outcome PaymentOutcome, status InvoiceStatus) {
	updated := outcome.Invoice.WithStatus(status)
	if err := r.invoices.UpdateInvoice(ctx, updated); err != nil {
		r.logger.WithError(err).WithField("invoice_id", updated.ID).
			Error("cannot record invoice status, continuing batch")
		return
	}

	r.metrics.InvoicesProcessedTotal.WithLabelValues(string(status)).Inc()
	if status == InvoiceStatusPaid {
		r.notifier.NotifySuccess(ctx, updated, outcome.Kind)
	} else {
		r.notifier.NotifyFailure(ctx, updated, outcome.Kind)
	}
}
