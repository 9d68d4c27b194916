package api

import (
	"context"
	"io"
	"math/rand"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/money"
	"github.com/copperpot/duebill/pkg/observability"
	"github.com/copperpot/duebill/pkg/schedule"
)

type mockInvoices struct {
	fetchFunc           func(ctx context.Context, id int64) (billing.Invoice, error)
	fetchAllFunc        func(ctx context.Context) ([]billing.Invoice, error)
	fetchWithStatusFunc func(ctx context.Context, status billing.InvoiceStatus) ([]billing.Invoice, error)
	updateFunc          func(ctx context.Context, invoice billing.Invoice) error
}

func (m *mockInvoices) FetchInvoice(ctx context.Context, id int64) (billing.Invoice, error) {
	if m.fetchFunc == nil {
		return billing.Invoice{}, billing.ErrInvoiceNotFound
	}
	return m.fetchFunc(ctx, id)
}

func (m *mockInvoices) FetchInvoices(ctx context.Context) ([]billing.Invoice, error) {
	if m.fetchAllFunc == nil {
		return nil, nil
	}
	return m.fetchAllFunc(ctx)
}

func (m *mockInvoices) FetchInvoicesWithStatus(ctx context.Context, status billing.InvoiceStatus) ([]billing.Invoice, error) {
	if m.fetchWithStatusFunc == nil {
		return nil, nil
	}
	return m.fetchWithStatusFunc(ctx, status)
}

func (m *mockInvoices) UpdateInvoice(ctx context.Context, invoice billing.Invoice) error {
	if m.updateFunc == nil {
		return nil
	}
	return m.updateFunc(ctx, invoice)
}

type mockCustomers struct {
	fetchFunc    func(ctx context.Context, id int64) (billing.Customer, error)
	fetchAllFunc func(ctx context.Context) ([]billing.Customer, error)
}

func (m *mockCustomers) FetchCustomer(ctx context.Context, id int64) (billing.Customer, error) {
	if m.fetchFunc == nil {
		return billing.Customer{}, billing.ErrCustomerNotFound
	}
	return m.fetchFunc(ctx, id)
}

func (m *mockCustomers) FetchCustomers(ctx context.Context) ([]billing.Customer, error) {
	if m.fetchAllFunc == nil {
		return nil, nil
	}
	return m.fetchAllFunc(ctx)
}

type mockPayments struct {
	chargeFunc func(ctx context.Context, invoice billing.Invoice) (bool, error)
}

func (m *mockPayments) Charge(ctx context.Context, invoice billing.Invoice) (bool, error) {
	if m.chargeFunc == nil {
		return true, nil
	}
	return m.chargeFunc(ctx, invoice)
}

type mockConverter struct{}

func (m *mockConverter) Convert(ctx context.Context, amount money.Money, target money.Currency) (money.Money, error) {
	return money.New(amount.Value, target), nil
}

type mockNotifier struct{}

func (m *mockNotifier) NotifySuccess(ctx context.Context, invoice billing.Invoice, kind billing.OutcomeKind) {
}

func (m *mockNotifier) NotifyFailure(ctx context.Context, invoice billing.Invoice, kind billing.OutcomeKind) {
}

type serverFixture struct {
	server    *httptest.Server
	invoices  *mockInvoices
	customers *mockCustomers
	payments  *mockPayments
	service   *billing.Service
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	invoices := &mockInvoices{}
	customers := &mockCustomers{}
	payments := &mockPayments{}

	orchestrator := billing.NewOrchestrator(payments, &mockConverter{}, customers,
		func(ctx context.Context) {}, logger, metrics)
	runner := billing.NewRunner(orchestrator, invoices, &mockNotifier{}, logger, metrics)
	scheduler := schedule.New()
	jitter := schedule.NewJitterWithSource(rand.NewSource(1))
	service := billing.NewService(orchestrator, runner, invoices, &mockNotifier{},
		scheduler, jitter, logger, metrics)

	api := NewServer(service, runner, invoices, customers,
		observability.NewHealthChecker(nil), logger, metrics)

	ts := httptest.NewServer(api.Router())
	t.Cleanup(func() {
		service.CancelPeriodicBilling()
		ts.Close()
	})

	return &serverFixture{
		server:    ts,
		invoices:  invoices,
		customers: customers,
		payments:  payments,
		service:   service,
	}
}

func pendingInvoice(id, customerID int64) billing.Invoice {
	return billing.Invoice{
		ID:         id,
		CustomerID: customerID,
		Amount:     money.FromFloat(125.50, money.EUR),
		Status:     billing.InvoiceStatusPending,
	}
}
