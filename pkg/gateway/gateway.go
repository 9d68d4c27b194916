package gateway

import (
	"context"
	"math/rand"
	"sync"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/money"
)

// Rates configures how often the simulated providers fail.
type Rates struct {
	// Decline is the probability of a charge being rejected by the
	// customer's bank.
	Decline float64
	// Network is the probability of a transient transport failure.
	Network float64
	// CustomerNotFound is the probability of the provider not knowing
	// the customer.
	CustomerNotFound float64
	// CurrencyNotFound is the probability of the converter rejecting
	// the target currency.
	CurrencyNotFound float64
}

// DefaultRates returns failure rates that exercise every recovery path
// without drowning the happy one.
func DefaultRates() Rates {
	return Rates{
		Decline:          0.2,
		Network:          0.1,
		CustomerNotFound: 0.02,
		CurrencyNotFound: 0.02,
	}
}

// RandomPayments simulates a payment provider. When wired with a
// customer store it verifies the invoice currency against the
// customer's account currency and rejects mismatches, like a real
// provider would.
type RandomPayments struct {
	customers billing.CustomerStore
	rates     Rates

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPayments creates a simulated payment provider. customers may
// be nil, in which case no currency check is performed.
func NewRandomPayments(customers billing.CustomerStore, rates Rates, rng *rand.Rand) *RandomPayments {
	return &RandomPayments{customers: customers, rates: rates, rng: rng}
}

// Charge simulates charging the invoice through the payment rails.
func (p *RandomPayments) Charge(ctx context.Context, invoice billing.Invoice) (bool, error) {
	if p.roll() < p.rates.Network {
		return false, &billing.NetworkError{Op: "charge"}
	}
	if p.roll() < p.rates.CustomerNotFound {
		return false, billing.ErrCustomerNotFound
	}

	if p.customers != nil {
		customer, err := p.customers.FetchCustomer(ctx, invoice.CustomerID)
		if err != nil {
			return false, billing.ErrCustomerNotFound
		}
		if invoice.Amount.Currency != customer.Currency {
			return false, billing.ErrCurrencyMismatch
		}
	}

	return p.roll() >= p.rates.Decline, nil
}

func (p *RandomPayments) roll() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}

// RandomConverter simulates a currency conversion provider: it returns
// a random amount denominated in the target currency.
type RandomConverter struct {
	rates Rates

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomConverter creates a simulated currency converter.
func NewRandomConverter(rates Rates, rng *rand.Rand) *RandomConverter {
	return &RandomConverter{rates: rates, rng: rng}
}

// Convert simulates converting the amount to the target currency.
func (c *RandomConverter) Convert(ctx context.Context, amount money.Money, target money.Currency) (money.Money, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rng.Float64() < c.rates.Network {
		return money.Money{}, &billing.NetworkError{Op: "convert"}
	}
	if c.rng.Float64() < c.rates.CurrencyNotFound {
		return money.Money{}, billing.ErrCurrencyNotFound
	}

	return money.FromFloat(10+c.rng.Float64()*990, target), nil
}
