package billing

import (
	"context"
	"errors"

	"github.com/copperpot/duebill/pkg/observability"
)

// MaxRetry bounds transient-failure retries. It applies independently to
// charge attempts and to conversion attempts.
const MaxRetry = 3

// DelayFunc blocks for a retry back-off period. Production wiring uses a
// jittered sleep; tests inject a no-op.
type DelayFunc func(ctx context.Context)

// Orchestrator drives a single invoice to a terminal payment outcome.
type Orchestrator struct {
	payments  PaymentProvider
	converter CurrencyConverter
	customers CustomerStore
	delay     DelayFunc
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewOrchestrator creates an Orchestrator. delay is called between
// retries of transient failures.
func NewOrchestrator(payments PaymentProvider, converter CurrencyConverter, customers CustomerStore,
	delay DelayFunc, logger *observability.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		payments:  payments,
		converter: converter,
		customers: customers,
		delay:     delay,
		logger:    logger,
		metrics:   metrics,
	}
}

// TryPaymentRequest charges the invoice, retrying transient network
// failures up to MaxRetry times with a back-off delay between attempts.
// A currency mismatch triggers the conversion sub-flow; a successful
// conversion restarts the charge attempts from zero with the converted
// amount. The returned outcome always carries the invoice that was (or
// would have been) charged, except that an abandoned conversion reports
// the original, unconverted invoice.
func (o *Orchestrator) TryPaymentRequest(ctx context.Context, invoice Invoice) PaymentOutcome {
	log := o.logger.WithField("invoice_id", invoice.ID)

	current := invoice
	for attempt := 0; attempt < MaxRetry; attempt++ {
		paid, err := o.payments.Charge(ctx, current)
		switch {
		case err == nil && paid:
			o.metrics.ChargesTotal.WithLabelValues("success").Inc()
			return PaymentOutcome{Invoice: current, Paid: true, Kind: OutcomeSuccess}

		case err == nil:
			o.metrics.ChargesTotal.WithLabelValues("declined").Inc()
			return PaymentOutcome{Invoice: current, Paid: false, Kind: OutcomeFailure}

		case errors.Is(err, ErrCustomerNotFound):
			// Unresolvable without human intervention, surface the
			// dedicated outcome and do not retry.
			log.WithError(err).Warn("customer not found, giving up")
			o.metrics.ChargesTotal.WithLabelValues("customer_not_found").Inc()
			return PaymentOutcome{Invoice: current, Paid: false, Kind: OutcomeCustomerNotFound}

		case errors.Is(err, ErrCurrencyMismatch):
			log.WithError(err).Warn("currency mismatch, attempting conversion")
			converted, ok := o.convertCurrency(ctx, current)
			if !ok {
				// Conversion abandoned: the outcome keeps the original
				// unconverted invoice.
				return PaymentOutcome{Invoice: invoice, Paid: false, Kind: OutcomeFailure}
			}
			current = converted
			// Conversion succeeded, the charge gets a fresh attempt
			// budget for the converted amount.
			attempt = -1

		case IsNetworkError(err):
			log.WithError(err).Warnf("network error charging invoice, attempt %d", attempt+1)
			o.metrics.ChargeRetriesTotal.Inc()
			o.delay(ctx)

		default:
			log.WithError(err).Error("unexpected gateway error charging invoice")
			o.metrics.ChargesTotal.WithLabelValues("error").Inc()
			return PaymentOutcome{Invoice: current, Paid: false, Kind: OutcomeFailure}
		}
	}

	o.metrics.ChargesTotal.WithLabelValues("retries_exhausted").Inc()
	return PaymentOutcome{Invoice: current, Paid: false, Kind: OutcomeFailure}
}

// convertCurrency looks up the invoice's customer and converts the
// invoice amount to the customer's currency, retrying transient
// failures on its own MaxRetry budget. ok is false when conversion was
// abandoned.
func (o *Orchestrator) convertCurrency(ctx context.Context, invoice Invoice) (converted Invoice, ok bool) {
	log := o.logger.WithField("invoice_id", invoice.ID)

	for attempt := 0; attempt < MaxRetry; attempt++ {
		customer, err := o.customers.FetchCustomer(ctx, invoice.CustomerID)
		if IsNetworkError(err) {
			log.WithError(err).Warnf("network error fetching customer, attempt %d", attempt+1)
			o.delay(ctx)
			continue
		}
		if err != nil {
			log.WithError(err).Warn("cannot resolve customer for conversion")
			o.metrics.ConversionsTotal.WithLabelValues("customer_not_found").Inc()
			return Invoice{}, false
		}

		amount, err := o.converter.Convert(ctx, invoice.Amount, customer.Currency)
		switch {
		case err == nil:
			o.metrics.ConversionsTotal.WithLabelValues("success").Inc()
			return invoice.WithAmount(amount), true

		case errors.Is(err, ErrCurrencyNotFound):
			log.WithError(err).Warn("conversion target currency unsupported")
			o.metrics.ConversionsTotal.WithLabelValues("currency_not_found").Inc()
			return Invoice{}, false

		case IsNetworkError(err):
			log.WithError(err).Warnf("network error converting currency, attempt %d", attempt+1)
			o.delay(ctx)

		default:
			log.WithError(err).Error("unexpected converter error")
			o.metrics.ConversionsTotal.WithLabelValues("error").Inc()
			return Invoice{}, false
		}
	}

	o.metrics.ConversionsTotal.WithLabelValues("retries_exhausted").Inc()
	return Invoice{}, false
}
