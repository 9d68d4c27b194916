// Package money provides the currency-tagged decimal amount used on
// invoices throughout the billing engine.
package money
