package notify

import (
	"context"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/observability"
)

// LogNotifier reports payment outcomes as structured log lines.
type LogNotifier struct {
	logger *observability.Logger
}

// NewLogNotifier creates a notifier that logs outcomes.
func NewLogNotifier(logger *observability.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifySuccess logs a settled invoice.
func (n *LogNotifier) NotifySuccess(ctx context.Context, invoice billing.Invoice, kind billing.OutcomeKind) {
	n.fields(invoice, kind).Info("invoice paid")
}

// NotifyFailure logs an invoice that could not be collected.
func (n *LogNotifier) NotifyFailure(ctx context.Context, invoice billing.Invoice, kind billing.OutcomeKind) {
	n.fields(invoice, kind).Warn("invoice payment failed")
}

func (n *LogNotifier) fields(invoice billing.Invoice, kind billing.OutcomeKind) *observability.Logger {
	return n.logger.WithFields(map[string]interface{}{
		"invoice_id":  invoice.ID,
		"customer_id": invoice.CustomerID,
		"amount":      invoice.Amount.String(),
		"outcome":     string(kind),
	})
}
