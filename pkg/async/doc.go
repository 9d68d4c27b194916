// Package async provides safe concurrent execution primitives for background tasks.
//
// SafeGo executes a function in a goroutine with panic recovery, a
// timeout and error logging. Use it instead of a bare `go func()` for
// fire-and-forget work such as on-demand billing runs.
package async
