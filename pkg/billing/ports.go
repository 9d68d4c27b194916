package billing

import (
	"context"

	"github.com/copperpot/duebill/pkg/money"
)

// PaymentProvider charges a customer's account for an invoice.
//
// The boolean reports whether the charge was accepted. Expected failure
// signals are ErrCustomerNotFound, ErrCurrencyMismatch and NetworkError.
type PaymentProvider interface {
	Charge(ctx context.Context, invoice Invoice) (bool, error)
}

// CurrencyConverter converts an amount to a target currency. Expected
// failure signals are ErrCurrencyNotFound and NetworkError.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount money.Money, target money.Currency) (money.Money, error)
}

// InvoiceStore is the persistence contract the billing core reads
// invoices from and writes terminal statuses to.
type InvoiceStore interface {
	FetchInvoice(ctx context.Context, id int64) (Invoice, error)
	FetchInvoices(ctx context.Context) ([]Invoice, error)
	FetchInvoicesWithStatus(ctx context.Context, status InvoiceStatus) ([]Invoice, error)
	UpdateInvoice(ctx context.Context, invoice Invoice) error
}

// CustomerStore provides read access to customer records.
type CustomerStore interface {
	FetchCustomer(ctx context.Context, id int64) (Customer, error)
	FetchCustomers(ctx context.Context) ([]Customer, error)
}

// Notifier delivers payment outcome notifications. Delivery is
// fire-and-forget; the core never observes a delivery failure.
type Notifier interface {
	NotifySuccess(ctx context.Context, invoice Invoice, kind OutcomeKind)
	NotifyFailure(ctx context.Context, invoice Invoice, kind OutcomeKind)
}
