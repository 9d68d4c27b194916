package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/copperpot/duebill/pkg/observability"
)

// SafeGo executes a function in a goroutine with:
// - Panic recovery
// - Timeout enforcement
// - Error logging
//
// The task runs detached from the caller's context so an HTTP handler
// returning does not cancel it.
//
// Example:
//
//	SafeGo(logger, 10*time.Minute, "billing run", func(ctx context.Context) error {
//	    return runner.Run(ctx)
//	})
func SafeGo(logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(map[string]interface{}{
					"task":  taskName,
					"panic": fmt.Sprintf("%v", r),
					"stack": string(debug.Stack()),
				}).Error("panic in background task")
			}
		}()

		if err := fn(ctx); err != nil {
			logger.WithField("task", taskName).WithError(err).Error("background task failed")
		}
	}()
}

// SafeGoNoError is like SafeGo but for functions that don't return errors.
func SafeGoNoError(logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context)) {
	SafeGo(logger, timeout, taskName, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}
