package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	DKK Currency = "DKK"
	SEK Currency = "SEK"
	GBP Currency = "GBP"
)

// Currencies lists every currency the engine bills in.
func Currencies() []Currency {
	return []Currency{EUR, USD, DKK, SEK, GBP}
}

// ParseCurrency parses a currency code, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

// Money is an amount in a specific currency. It is an immutable value;
// arithmetic and conversion produce new values.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency Currency        `json:"currency"`
}

// New creates a Money value.
func New(value decimal.Decimal, currency Currency) Money {
	return Money{Value: value, Currency: currency}
}

// FromFloat creates a Money value from a float amount.
func FromFloat(value float64, currency Currency) Money {
	return Money{Value: decimal.NewFromFloat(value), Currency: currency}
}

// FromString parses a decimal string into a Money value.
func FromString(value string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Money{Value: d, Currency: currency}, nil
}

// Equal reports whether two amounts have the same value and currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Value.Equal(other.Value)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Value.StringFixed(2), m.Currency)
}
