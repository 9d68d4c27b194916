// Package schedule provides the single-slot timer that drives periodic
// billing, plus the jittered time utilities the engine randomizes its
// retries and schedule with.
//
// The Scheduler holds at most one pending trigger: scheduling a new task
// cancels the previous one. Each trigger is one-shot; recurrence is the
// caller's responsibility (the billing facade re-arms after every run).
package schedule
