package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/copperpot/duebill/pkg/observability"
	"github.com/copperpot/duebill/pkg/schedule"
)

// billingDay is the default day of month periodic billing starts on.
const billingDay = 1

// Service is the public billing entry point: on-demand single-invoice
// payment plus periodic billing control.
type Service struct {
	orchestrator *Orchestrator
	runner       *Runner
	invoices     InvoiceStore
	notifier     Notifier
	scheduler    *schedule.Scheduler
	jitter       *schedule.Jitter
	logger       *observability.Logger
	metrics      *observability.Metrics

	// rearm gates the monthly re-scheduling performed after each
	// periodic run, so a cancellation during a run sticks.
	mu    sync.Mutex
	rearm bool
}

// NewService creates the billing facade.
func NewService(orchestrator *Orchestrator, runner *Runner, invoices InvoiceStore, notifier Notifier,
	scheduler *schedule.Scheduler, jitter *schedule.Jitter,
	logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		orchestrator: orchestrator,
		runner:       runner,
		invoices:     invoices,
		notifier:     notifier,
		scheduler:    scheduler,
		jitter:       jitter,
		logger:       logger,
		metrics:      metrics,
	}
}

// RequestPayment charges a single invoice on demand and records the
// outcome. An unknown invoice id yields FAILURE without an error; an
// already paid invoice yields SUCCESS without touching the gateway.
// Only unexpected persistence failures return a non-nil error.
func (s *Service) RequestPayment(ctx context.Context, invoiceID int64) (OutcomeKind, error) {
	invoice, err := s.invoices.FetchInvoice(ctx, invoiceID)
	if errors.Is(err, ErrInvoiceNotFound) {
		s.logger.WithField("invoice_id", invoiceID).Debug("cannot find invoice")
		return OutcomeFailure, nil
	}
	if err != nil {
		return "", err
	}

	if invoice.Status == InvoiceStatusPaid {
		return OutcomeSuccess, nil
	}

	outcome := s.orchestrator.TryPaymentRequest(ctx, invoice)

	status := InvoiceStatusFailed
	if outcome.Paid {
		status = InvoiceStatusPaid
	}
	updated := outcome.Invoice.WithStatus(status)
	if err := s.invoices.UpdateInvoice(ctx, updated); err != nil {
		return "", err
	}
	s.metrics.InvoicesProcessedTotal.WithLabelValues(string(status)).Inc()

	if outcome.Paid {
		s.notifier.NotifySuccess(ctx, updated, outcome.Kind)
	} else {
		s.notifier.NotifyFailure(ctx, updated, outcome.Kind)
	}

	return outcome.Kind, nil
}

// StartPeriodicBilling schedules the batch run for the first of the
// month at a randomized hour and minute. The jitter spreads engine
// instances out so simultaneous deployments do not all bill at once.
func (s *Service) StartPeriodicBilling() error {
	return s.SetPeriodicBilling(billingDay, s.jitter.RandomHour(), s.jitter.RandomMinute())
}

// SetPeriodicBilling schedules the batch run for the given day of month
// at hour:minute, replacing any active schedule. The run re-arms itself
// monthly until cancelled. An invalid schedule is rejected before any
// active trigger is touched.
func (s *Service) SetPeriodicBilling(day, hour, minute int) error {
	if err := schedule.Validate(day, hour, minute); err != nil {
		return err
	}

	s.mu.Lock()
	s.rearm = true
	if s.scheduler.IsTaskActive() {
		s.scheduler.StopActiveTask()
	}
	err := s.scheduleRun(day, hour, minute)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Infof("periodic billing scheduled: day %d of month at %02d:%02d", day, hour, minute)
	return nil
}

// CancelPeriodicBilling stops the active schedule. No-op when nothing
// is scheduled.
func (s *Service) CancelPeriodicBilling() {
	s.mu.Lock()
	s.rearm = false
	s.scheduler.StopActiveTask()
	s.mu.Unlock()

	s.logger.Info("periodic billing stopped")
}

// IsPeriodicBillingActive reports whether a billing trigger is held.
func (s *Service) IsPeriodicBillingActive() bool {
	return s.scheduler.IsTaskActive()
}

// scheduleRun arms one firing of the batch run. Callers hold s.mu. The
// fired task re-checks rearm and re-arms under the same lock, so a
// cancellation can never interleave between the check and the new timer.
func (s *Service) scheduleRun(day, hour, minute int) error {
	task := func() {
		s.runner.Run(context.Background())

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.rearm {
			return
		}
		if err := s.scheduleRun(day, hour, minute); err != nil {
			s.logger.WithError(err).Error("cannot re-arm periodic billing")
		}
	}
	return s.scheduler.ScheduleTask(task, day, hour, minute)
}
