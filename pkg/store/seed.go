package store

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/money"
)

const (
	seedCustomers       = 100
	seedInvoicesPerCust = 10
	seedAmountMin       = 10.0
	seedAmountMax       = 500.0
)

// Seed populates an empty database with demo data: customers in random
// currencies, each with one PENDING invoice and the rest already PAID.
// A database that already has customers is left untouched.
func (s *Store) Seed(ctx context.Context, rng *rand.Rand) error {
	existing, err := s.FetchCustomers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	currencies := money.Currencies()
	for i := 0; i < seedCustomers; i++ {
		currency := currencies[rng.Intn(len(currencies))]
		customer, err := s.CreateCustomer(ctx, currency)
		if err != nil {
			return fmt.Errorf("seeding customers: %w", err)
		}

		for j := 0; j < seedInvoicesPerCust; j++ {
			amount := money.FromFloat(seedAmountMin+rng.Float64()*(seedAmountMax-seedAmountMin), customer.Currency)
			status := billing.InvoiceStatusPaid
			if j == 0 {
				status = billing.InvoiceStatusPending
			}
			if _, err := s.CreateInvoice(ctx, customer.ID, amount, status); err != nil {
				return fmt.Errorf("seeding invoices: %w", err)
			}
		}
	}
	return nil
}
