package store

import (
	"context"
	"math/rand"
	"testing"

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open("sqlite3", ":memory:")
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCustomerRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.CreateCustomer(ctx, money.DKK)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := s.FetchCustomer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	all, err := s.FetchCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFetchCustomerNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.FetchCustomer(context.Background(), 12345)
	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestInvoiceRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	customer, err := s.CreateCustomer(ctx, money.EUR)
	require.NoError(t, err)

	amount := money.FromFloat(123.45, money.EUR)
	created, err := s.CreateInvoice(ctx, customer.ID, amount, billing.InvoiceStatusPending)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := s.FetchInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, fetched.CustomerID)
	assert.True(t, fetched.Amount.Equal(amount))
	assert.Equal(t, billing.InvoiceStatusPending, fetched.Status)
}

func TestFetchInvoiceNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.FetchInvoice(context.Background(), 999)
	assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
}

func TestFetchInvoicesWithStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	customer, err := s.CreateCustomer(ctx, money.USD)
	require.NoError(t, err)

	amount := money.FromFloat(50, money.USD)
	_, err = s.CreateInvoice(ctx, customer.ID, amount, billing.InvoiceStatusPending)
	require.NoError(t, err)
	_, err = s.CreateInvoice(ctx, customer.ID, amount, billing.InvoiceStatusPaid)
	require.NoError(t, err)
	_, err = s.CreateInvoice(ctx, customer.ID, amount, billing.InvoiceStatusPending)
	require.NoError(t, err)

	pending, err := s.FetchInvoicesWithStatus(ctx, billing.InvoiceStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := s.FetchInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateInvoice(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	customer, err := s.CreateCustomer(ctx, money.GBP)
	require.NoError(t, err)

	created, err := s.CreateInvoice(ctx, customer.ID, money.FromFloat(75, money.GBP), billing.InvoiceStatusPending)
	require.NoError(t, err)

	converted := created.WithAmount(money.FromFloat(88.20, money.EUR)).WithStatus(billing.InvoiceStatusPaid)
	require.NoError(t, s.UpdateInvoice(ctx, converted))

	fetched, err := s.FetchInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, fetched.Status)
	assert.True(t, fetched.Amount.Equal(money.FromFloat(88.20, money.EUR)))
}

func TestUpdateInvoiceVanished(t *testing.T) {
	s := setupTestStore(t)

	ghost := billing.Invoice{ID: 404, Amount: money.FromFloat(1, money.EUR), Status: billing.InvoiceStatusPaid}
	err := s.UpdateInvoice(context.Background(), ghost)
	assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
}

func TestSeed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	require.NoError(t, s.Seed(ctx, rng))

	customers, err := s.FetchCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, seedCustomers)

	pending, err := s.FetchInvoicesWithStatus(ctx, billing.InvoiceStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, seedCustomers, "one pending invoice per customer")

	all, err := s.FetchInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, all, seedCustomers*seedInvoicesPerCust)

	// Seeding again is a no-op.
	require.NoError(t, s.Seed(ctx, rng))
	customers, err = s.FetchCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, seedCustomers)
}
