package billing

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/copperpot/duebill/pkg/money"
	"github.com/copperpot/duebill/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(payments *mockPayments, invoices *mockInvoices, notifier *mockNotifier) *Service {
	if payments == nil {
		payments = &mockPayments{}
	}
	if invoices == nil {
		invoices = &mockInvoices{}
	}
	if notifier == nil {
		notifier = &mockNotifier{}
	}
	logger := testLogger()
	metrics := testMetrics()
	o := NewOrchestrator(payments, &mockConverter{}, &mockCustomers{}, noDelay, logger, metrics)
	runner := NewRunner(o, invoices, notifier, logger, metrics)
	jitter := schedule.NewJitterWithSource(rand.NewSource(1))
	return NewService(o, runner, invoices, notifier, schedule.New(), jitter, logger, metrics)
}

func TestRequestPaymentUnknownInvoice(t *testing.T) {
	invoices := &mockInvoices{
		fetchFunc: func(ctx context.Context, id int64) (Invoice, error) {
			return Invoice{}, ErrInvoiceNotFound
		},
	}
	payments := &mockPayments{}
	s := newTestService(payments, invoices, nil)

	kind, err := s.RequestPayment(context.Background(), 404)

	require.NoError(t, err, "unknown invoice must not surface an error")
	assert.Equal(t, OutcomeFailure, kind)
	assert.Zero(t, payments.calls)
}

func TestRequestPaymentAlreadyPaid(t *testing.T) {
	paid := pendingInvoice(7, 10, 100, money.EUR).WithStatus(InvoiceStatusPaid)
	invoices := &mockInvoices{
		fetchFunc: func(ctx context.Context, id int64) (Invoice, error) { return paid, nil },
	}
	payments := &mockPayments{}
	s := newTestService(payments, invoices, nil)

	kind, err := s.RequestPayment(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, kind)
	assert.Zero(t, payments.calls, "paid invoices are never charged again")
	assert.Empty(t, invoices.updated)
}

func TestRequestPaymentChargesAndRecords(t *testing.T) {
	invoice := pendingInvoice(7, 10, 100, money.EUR)
	invoices := &mockInvoices{
		fetchFunc: func(ctx context.Context, id int64) (Invoice, error) { return invoice, nil },
	}
	notifier := &mockNotifier{}
	s := newTestService(&mockPayments{}, invoices, notifier)

	kind, err := s.RequestPayment(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, kind)
	require.Len(t, invoices.updated, 1)
	assert.Equal(t, InvoiceStatusPaid, invoices.updated[0].Status)
	require.Len(t, notifier.successes, 1)
	assert.Equal(t, OutcomeSuccess, notifier.successes[0].kind)
}

func TestRequestPaymentFailureRecordsFailed(t *testing.T) {
	invoice := pendingInvoice(7, 10, 100, money.EUR)
	invoices := &mockInvoices{
		fetchFunc: func(ctx context.Context, id int64) (Invoice, error) { return invoice, nil },
	}
	payments := &mockPayments{
		chargeFunc: func(ctx context.Context, invoice Invoice) (bool, error) { return false, nil },
	}
	notifier := &mockNotifier{}
	s := newTestService(payments, invoices, notifier)

	kind, err := s.RequestPayment(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, kind)
	require.Len(t, invoices.updated, 1)
	assert.Equal(t, InvoiceStatusFailed, invoices.updated[0].Status)
	require.Len(t, notifier.failures, 1)
}

func TestRequestPaymentUpdateFailurePropagates(t *testing.T) {
	invoice := pendingInvoice(7, 10, 100, money.EUR)
	invoices := &mockInvoices{
		fetchFunc:  func(ctx context.Context, id int64) (Invoice, error) { return invoice, nil },
		updateFunc: func(ctx context.Context, invoice Invoice) error { return errors.New("store down") },
	}
	s := newTestService(nil, invoices, nil)

	_, err := s.RequestPayment(context.Background(), 7)
	assert.Error(t, err)
}

func TestPeriodicBillingLifecycle(t *testing.T) {
	s := newTestService(nil, nil, nil)

	assert.False(t, s.IsPeriodicBillingActive())

	require.NoError(t, s.StartPeriodicBilling())
	assert.True(t, s.IsPeriodicBillingActive())

	// Replacing the schedule keeps exactly one trigger armed.
	require.NoError(t, s.SetPeriodicBilling(15, 4, 30))
	assert.True(t, s.IsPeriodicBillingActive())

	s.CancelPeriodicBilling()
	assert.False(t, s.IsPeriodicBillingActive())

	// Idempotent.
	s.CancelPeriodicBilling()
	assert.False(t, s.IsPeriodicBillingActive())
}

func TestSetPeriodicBillingRejectsInvalidSchedule(t *testing.T) {
	s := newTestService(nil, nil, nil)

	assert.Error(t, s.SetPeriodicBilling(0, 10, 0))
	assert.Error(t, s.SetPeriodicBilling(1, 25, 0))
	assert.Error(t, s.SetPeriodicBilling(1, 10, 61))
}

func TestSetPeriodicBillingRejectionKeepsActiveSchedule(t *testing.T) {
	s := newTestService(nil, nil, nil)

	require.NoError(t, s.SetPeriodicBilling(1, 10, 30))
	require.True(t, s.IsPeriodicBillingActive())

	require.Error(t, s.SetPeriodicBilling(1, 99, 0))
	assert.True(t, s.IsPeriodicBillingActive(),
		"a rejected schedule must leave the active one armed")

	s.CancelPeriodicBilling()
}

func TestPeriodicBillingRunsAndRearms(t *testing.T) {
	var runs atomic.Int32
	invoices := &mockInvoices{
		fetchWithStatusFunc: func(ctx context.Context, status InvoiceStatus) ([]Invoice, error) {
			runs.Add(1)
			return nil, nil
		},
	}

	logger := testLogger()
	metrics := testMetrics()
	o := NewOrchestrator(&mockPayments{}, &mockConverter{}, &mockCustomers{}, noDelay, logger, metrics)
	runner := NewRunner(o, invoices, &mockNotifier{}, logger, metrics)

	// Clock pinned just before the trigger so the task fires right away.
	target := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)
	scheduler := schedule.NewWithClock(func() time.Time { return target.Add(-20 * time.Millisecond) })
	jitter := schedule.NewJitterWithSource(rand.NewSource(1))
	s := NewService(o, runner, invoices, &mockNotifier{}, scheduler, jitter, logger, metrics)

	require.NoError(t, s.SetPeriodicBilling(1, 10, 30))

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond,
		"periodic run did not fire")

	// The same schedule is re-armed for the next firing.
	assert.Eventually(t, s.IsPeriodicBillingActive, time.Second, 10*time.Millisecond)

	s.CancelPeriodicBilling()
}

func TestCancelDuringRunPreventsRearm(t *testing.T) {
	var runs atomic.Int32
	var svc *Service
	invoices := &mockInvoices{
		fetchWithStatusFunc: func(ctx context.Context, status InvoiceStatus) ([]Invoice, error) {
			runs.Add(1)
			// Cancellation lands while the run is in flight, before the
			// task reaches its re-arm check.
			svc.CancelPeriodicBilling()
			return nil, nil
		},
	}

	logger := testLogger()
	metrics := testMetrics()
	o := NewOrchestrator(&mockPayments{}, &mockConverter{}, &mockCustomers{}, noDelay, logger, metrics)
	runner := NewRunner(o, invoices, &mockNotifier{}, logger, metrics)

	target := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)
	scheduler := schedule.NewWithClock(func() time.Time { return target.Add(-20 * time.Millisecond) })
	jitter := schedule.NewJitterWithSource(rand.NewSource(1))
	svc = NewService(o, runner, invoices, &mockNotifier{}, scheduler, jitter, logger, metrics)

	require.NoError(t, svc.SetPeriodicBilling(1, 10, 30))

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond,
		"periodic run did not fire")

	// Were the cancelled schedule re-armed, the pinned clock would fire
	// it again almost immediately.
	time.Sleep(150 * time.Millisecond)
	assert.False(t, svc.IsPeriodicBillingActive(), "cancelled schedule must not re-arm")
	assert.Equal(t, int32(1), runs.Load(), "cancelled schedule must not run again")
}
