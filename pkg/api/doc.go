// Package api exposes the billing engine over REST.
//
// # Routes
//
//	GET    /rest/health                       health probe, pings the database
//	GET    /rest/v1/invoices                  list invoices, ?status= filters
//	GET    /rest/v1/invoices/{id}             fetch one invoice
//	GET    /rest/v1/customers                 list customers
//	GET    /rest/v1/customers/{id}            fetch one customer
//	POST   /rest/v1/billing                   charge one invoice, body is the invoice id
//	POST   /rest/v1/billing/run               start a full billing run in the background
//	GET    /rest/v1/billing/periodic          periodic billing status
//	POST   /rest/v1/billing/periodic          start periodic billing at a randomized time
//	PUT    /rest/v1/billing/periodic          set the schedule, body is "day:hour:minute"
//	DELETE /rest/v1/billing/periodic          stop periodic billing
//
// All responses are JSON. Errors use {"error": "..."}.
package api
