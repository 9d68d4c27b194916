package billing

import (
	"context"
	"errors"
	"io"

	"github.com/copperpot/duebill/pkg/money"
	"github.com/copperpot/duebill/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(prometheus.NewRegistry())
}

// noDelay replaces the jittered retry sleep in tests.
func noDelay(context.Context) {}

type mockPayments struct {
	chargeFunc func(ctx context.Context, invoice Invoice) (bool, error)
	calls      int
	charged    []Invoice
}

func (m *mockPayments) Charge(ctx context.Context, invoice Invoice) (bool, error) {
	m.calls++
	m.charged = append(m.charged, invoice)
	if m.chargeFunc != nil {
		return m.chargeFunc(ctx, invoice)
	}
	return true, nil
}

type mockConverter struct {
	convertFunc func(ctx context.Context, amount money.Money, target money.Currency) (money.Money, error)
	calls       int
}

func (m *mockConverter) Convert(ctx context.Context, amount money.Money, target money.Currency) (money.Money, error) {
	m.calls++
	if m.convertFunc != nil {
		return m.convertFunc(ctx, amount, target)
	}
	return money.Money{Value: amount.Value, Currency: target}, nil
}

type mockCustomers struct {
	fetchFunc func(ctx context.Context, id int64) (Customer, error)
}

func (m *mockCustomers) FetchCustomer(ctx context.Context, id int64) (Customer, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, id)
	}
	return Customer{ID: id, Currency: money.EUR}, nil
}

func (m *mockCustomers) FetchCustomers(ctx context.Context) ([]Customer, error) {
	return nil, errors.New("not implemented")
}

type mockInvoices struct {
	fetchFunc           func(ctx context.Context, id int64) (Invoice, error)
	fetchAllFunc        func(ctx context.Context) ([]Invoice, error)
	fetchWithStatusFunc func(ctx context.Context, status InvoiceStatus) ([]Invoice, error)
	updateFunc          func(ctx context.Context, invoice Invoice) error
	updated             []Invoice
}

func (m *mockInvoices) FetchInvoice(ctx context.Context, id int64) (Invoice, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, id)
	}
	return Invoice{}, ErrInvoiceNotFound
}

func (m *mockInvoices) FetchInvoices(ctx context.Context) ([]Invoice, error) {
	if m.fetchAllFunc != nil {
		return m.fetchAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockInvoices) FetchInvoicesWithStatus(ctx context.Context, status InvoiceStatus) ([]Invoice, error) {
	if m.fetchWithStatusFunc != nil {
		return m.fetchWithStatusFunc(ctx, status)
	}
	return nil, nil
}

func (m *mockInvoices) UpdateInvoice(ctx context.Context, invoice Invoice) error {
	m.updated = append(m.updated, invoice)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, invoice)
	}
	return nil
}

type notification struct {
	invoice Invoice
	kind    OutcomeKind
}

type mockNotifier struct {
	successes []notification
	failures  []notification
}

func (m *mockNotifier) NotifySuccess(ctx context.Context, invoice Invoice, kind OutcomeKind) {
	m.successes = append(m.successes, notification{invoice, kind})
}

func (m *mockNotifier) NotifyFailure(ctx context.Context, invoice Invoice, kind OutcomeKind) {
	m.failures = append(m.failures, notification{invoice, kind})
}

func pendingInvoice(id, customerID int64, amount float64, currency money.Currency) Invoice {
	return Invoice{
		ID:         id,
		CustomerID: customerID,
		Amount:     money.FromFloat(amount, currency),
		Status:     InvoiceStatusPending,
	}
}
