package billing

import (
	"github.com/copperpot/duebill/pkg/money"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusFailed  InvoiceStatus = "FAILED"
)

// Invoice is a billable amount owed by a customer. Invoices are treated
// as immutable values; a status change is a replace-and-persist through
// the invoice store.
type Invoice struct {
	ID         int64         `json:"id"`
	CustomerID int64         `json:"customer_id"`
	Amount     money.Money   `json:"amount"`
	Status     InvoiceStatus `json:"status"`
}

// WithAmount returns a copy of the invoice carrying a different amount.
func (i Invoice) WithAmount(amount money.Money) Invoice {
	i.Amount = amount
	return i
}

// WithStatus returns a copy of the invoice carrying a different status.
func (i Invoice) WithStatus(status InvoiceStatus) Invoice {
	i.Status = status
	return i
}

// Customer is the party billed by an invoice. Read-only from the
// orchestration core's perspective.
type Customer struct {
	ID       int64          `json:"id"`
	Currency money.Currency `json:"currency"`
}

// OutcomeKind classifies the terminal result of one payment attempt.
// CUSTOMER_NOT_FOUND is a failure that additionally signals the invoice
// cannot be resolved automatically.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "SUCCESS"
	OutcomeFailure          OutcomeKind = "FAILURE"
	OutcomeCustomerNotFound OutcomeKind = "CUSTOMER_NOT_FOUND"
)

// PaymentOutcome is the terminal result of orchestrating one invoice.
// It is a transient value, produced exactly once per orchestration call
// and never persisted.
type PaymentOutcome struct {
	Invoice Invoice     `json:"invoice"`
	Paid    bool        `json:"paid"`
	Kind    OutcomeKind `json:"kind"`
}
