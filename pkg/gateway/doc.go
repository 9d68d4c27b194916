// Package gateway provides the external payment provider and currency
// converter implementations the engine is wired with.
//
// The real payment rails live outside this system; the implementations
// here simulate them with configurable failure rates, which is enough to
// exercise every recovery path of the orchestration core (declines,
// unknown customers, currency mismatches, flaky networks).
package gateway
