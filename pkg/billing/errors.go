package billing

import (
	"errors"
	"fmt"
)

// Closed set of domain signals a gateway call can fail with. The
// orchestrator branches on these with errors.Is; anything else is
// treated as fatal and propagates.
var (
	// ErrCustomerNotFound means the gateway has no record of the
	// invoice's customer. Permanent, never retried.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCurrencyMismatch means the gateway rejected the charge because
	// the invoice amount's currency differs from the customer's
	// account currency. Recoverable via conversion.
	ErrCurrencyMismatch = errors.New("invoice currency does not match customer currency")

	// ErrCurrencyNotFound means the conversion target currency is not
	// supported by the converter. Permanent, never retried.
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrInvoiceNotFound means an invoice id has no backing record.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// NetworkError marks a transient transport failure. Charges and
// conversions that fail with a NetworkError are retried up to the
// orchestrator's bound.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: network error", e.Op)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is a transient network failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
