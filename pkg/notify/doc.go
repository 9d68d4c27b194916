// Package notify delivers payment outcome notifications. The shipped
// implementation writes structured log lines; richer channels (email,
// webhooks) can be added behind the same billing.Notifier contract.
package notify
