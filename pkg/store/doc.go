// Package store persists invoices and customers behind the billing
// core's store contracts.
//
// # Overview
//
// A single Store type works against SQLite (the default, good for
// development and tests) and PostgreSQL. Queries are written once with ?
// placeholders and rebound for drivers that use $n numbering; the few
// statements that genuinely differ (DDL, insert-returning) go through a
// small dialect table.
//
// # Usage Example
//
//	st, err := store.Open("sqlite3", "duebill.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	pending, err := st.FetchInvoicesWithStatus(ctx, billing.InvoiceStatusPending)
//
// # Related Packages
//
//   - pkg/billing: consumes the InvoiceStore and CustomerStore contracts
package store
