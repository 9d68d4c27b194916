// Package billing implements the payment orchestration core of the
// recurring billing engine.
//
// # Overview
//
// This package drives unpaid invoices to a terminal outcome: it charges
// them through an external payment gateway, retries transient network
// failures a bounded number of times with jittered delays, recovers from
// currency mismatches by converting the invoice amount to the customer's
// currency, and records exactly one outcome per invoice.
//
// # Components
//
// Orchestrator: bounded-retry charge attempt for a single invoice
//
//	outcome := orchestrator.TryPaymentRequest(ctx, invoice)
//	// outcome.Kind is SUCCESS, FAILURE or CUSTOMER_NOT_FOUND
//
// Runner: batch body executed by the scheduler
//
//	runner.Run(ctx) // charges every PENDING invoice, marks and notifies
//
// Service: public facade combining on-demand billing and periodic control
//
//	kind, err := service.RequestPayment(ctx, invoiceID)
//	service.StartPeriodicBilling()
//
// # Related Packages
//
//   - pkg/schedule: single-slot timer driving periodic runs
//   - pkg/store: invoice and customer persistence
//   - pkg/gateway: payment provider and currency converter implementations
package billing
