package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/copperpot/duebill/pkg/billing"
	"github.com/copperpot/duebill/pkg/money"
)

// dialect captures the few per-driver differences.
type dialect struct {
	name            string
	customersDDL    string
	invoicesDDL     string
	insertReturning bool
	numberedArgs    bool
}

var dialects = map[string]dialect{
	"sqlite3": {
		name: "sqlite3",
		customersDDL: `CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			currency TEXT NOT NULL
		)`,
		invoicesDDL: `CREATE TABLE IF NOT EXISTS invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		insertReturning: false,
		numberedArgs:    false,
	},
	"postgres": {
		name: "postgres",
		customersDDL: `CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			currency TEXT NOT NULL
		)`,
		invoicesDDL: `CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		insertReturning: true,
		numberedArgs:    true,
	},
}

// Store implements the billing InvoiceStore and CustomerStore contracts
// over database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open opens a database connection for the given driver ("sqlite3" or
// "postgres"), verifies it and creates the schema.
func Open(driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection, without migrating.
func NewWithDB(db *sql.DB, driver string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	return &Store{db: db, dialect: d}, nil
}

// DB exposes the underlying connection for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.customersDDL); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.invoicesDDL); err != nil {
		return fmt.Errorf("failed to create invoices table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for drivers that need it.
func (s *Store) rebind(query string) string {
	if !s.dialect.numberedArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateCustomer inserts a customer and returns it with its assigned id.
func (s *Store) CreateCustomer(ctx context.Context, currency money.Currency) (billing.Customer, error) {
	if s.dialect.insertReturning {
		var id int64
		err := s.db.QueryRowContext(ctx,
			s.rebind(`INSERT INTO customers (currency) VALUES (?) RETURNING id`),
			string(currency)).Scan(&id)
		if err != nil {
			return billing.Customer{}, fmt.Errorf("failed to create customer: %w", err)
		}
		return billing.Customer{ID: id, Currency: currency}, nil
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO customers (currency) VALUES (?)`, string(currency))
	if err != nil {
		return billing.Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return billing.Customer{}, fmt.Errorf("failed to read customer id: %w", err)
	}
	return billing.Customer{ID: id, Currency: currency}, nil
}

// FetchCustomer retrieves a customer by id.
func (s *Store) FetchCustomer(ctx context.Context, id int64) (billing.Customer, error) {
	var currency string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT currency FROM customers WHERE id = ?`), id).Scan(&currency)
	if err == sql.ErrNoRows {
		return billing.Customer{}, billing.ErrCustomerNotFound
	}
	if err != nil {
		return billing.Customer{}, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}

	c, err := money.ParseCurrency(currency)
	if err != nil {
		return billing.Customer{}, fmt.Errorf("corrupt customer %d: %w", id, err)
	}
	return billing.Customer{ID: id, Currency: c}, nil
}

// FetchCustomers retrieves all customers ordered by id.
func (s *Store) FetchCustomers(ctx context.Context) ([]billing.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, currency FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []billing.Customer
	for rows.Next() {
		var (
			id       int64
			currency string
		)
		if err := rows.Scan(&id, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c, err := money.ParseCurrency(currency)
		if err != nil {
			return nil, fmt.Errorf("corrupt customer %d: %w", id, err)
		}
		customers = append(customers, billing.Customer{ID: id, Currency: c})
	}
	return customers, rows.Err()
}

// CreateInvoice inserts an invoice and returns it with its assigned id.
func (s *Store) CreateInvoice(ctx context.Context, customerID int64, amount money.Money, status billing.InvoiceStatus) (billing.Invoice, error) {
	invoice := billing.Invoice{CustomerID: customerID, Amount: amount, Status: status}

	if s.dialect.insertReturning {
		err := s.db.QueryRowContext(ctx,
			s.rebind(`INSERT INTO invoices (customer_id, amount, currency, status) VALUES (?, ?, ?, ?) RETURNING id`),
			customerID, amount.Value.String(), string(amount.Currency), string(status)).Scan(&invoice.ID)
		if err != nil {
			return billing.Invoice{}, fmt.Errorf("failed to create invoice: %w", err)
		}
		return invoice, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (customer_id, amount, currency, status) VALUES (?, ?, ?, ?)`,
		customerID, amount.Value.String(), string(amount.Currency), string(status))
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to create invoice: %w", err)
	}
	invoice.ID, err = res.LastInsertId()
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to read invoice id: %w", err)
	}
	return invoice, nil
}

// FetchInvoice retrieves an invoice by id.
func (s *Store) FetchInvoice(ctx context.Context, id int64) (billing.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, customer_id, amount, currency, status FROM invoices WHERE id = ?`), id)

	invoice, err := scanInvoice(row.Scan)
	if err == sql.ErrNoRows {
		return billing.Invoice{}, billing.ErrInvoiceNotFound
	}
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to fetch invoice %d: %w", id, err)
	}
	return invoice, nil
}

// FetchInvoices retrieves all invoices ordered by id.
func (s *Store) FetchInvoices(ctx context.Context) ([]billing.Invoice, error) {
	return s.queryInvoices(ctx, `SELECT id, customer_id, amount, currency, status FROM invoices ORDER BY id`)
}

// FetchInvoicesWithStatus retrieves all invoices with the given status
// ordered by id.
func (s *Store) FetchInvoicesWithStatus(ctx context.Context, status billing.InvoiceStatus) ([]billing.Invoice, error) {
	return s.queryInvoices(ctx,
		s.rebind(`SELECT id, customer_id, amount, currency, status FROM invoices WHERE status = ? ORDER BY id`),
		string(status))
}

// UpdateInvoice replaces an invoice's stored amount and status. Returns
// billing.ErrInvoiceNotFound when the invoice no longer exists.
func (s *Store) UpdateInvoice(ctx context.Context, invoice billing.Invoice) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE invoices SET amount = ?, currency = ?, status = ? WHERE id = ?`),
		invoice.Amount.Value.String(), string(invoice.Amount.Currency), string(invoice.Status), invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", invoice.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", invoice.ID, err)
	}
	if affected == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]billing.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []billing.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func scanInvoice(scan func(dest ...interface{}) error) (billing.Invoice, error) {
	var (
		invoice  billing.Invoice
		amount   string
		currency string
		status   string
	)
	if err := scan(&invoice.ID, &invoice.CustomerID, &amount, &currency, &status); err != nil {
		return billing.Invoice{}, err
	}

	c, err := money.ParseCurrency(currency)
	if err != nil {
		return billing.Invoice{}, err
	}
	m, err := money.FromString(amount, c)
	if err != nil {
		return billing.Invoice{}, err
	}
	invoice.Amount = m
	invoice.Status = billing.InvoiceStatus(status)
	return invoice, nil
}
