// Package retry provides a bounded retry wrapper independent of HTTP semantics.
package retry

import (
	"context"
	"log/slog"

	"github.com/vietddude/guardian/internal/core/domain"
	"github.com/vietddude/guardian/internal/metrics"
)

// Operation is a unit of work the executor may invoke more than once.
type Operation[T any] func(ctx context.Context) (T, error)

// Execute invokes op until it succeeds or maxRetries invocations have been
// made in total, whichever comes first. The error of the final invocation is
// returned unchanged. There is no delay between attempts; backoff belongs to
// the caller. A maxRetries below 1 still runs op once.
func Execute[T any](ctx context.Context, cc domain.CallContext, maxRetries int, op Operation[T]) (T, error) {
	return ExecuteWithLogger(ctx, slog.Default(), cc, maxRetries, op)
}

// ExecuteWithLogger is Execute reporting attempts to log. A nil log uses
// slog.Default.
func ExecuteWithLogger[T any](
	ctx context.Context,
	log *slog.Logger,
	cc domain.CallContext,
	maxRetries int,
	op Operation[T],
) (T, error) {
	if log == nil {
		log = slog.Default()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	operation := cc.Operation
	if operation == "" {
		operation = "unnamed"
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err = op(ctx)
		if err == nil {
			metrics.RetryAttempts.WithLabelValues(operation, "success").Inc()
			return result, nil
		}
		metrics.RetryAttempts.WithLabelValues(operation, "failure").Inc()

		if attempt == maxRetries {
			break
		}
		if ctx.Err() != nil {
			log.Debug("Retry stopped by context", "operation", operation, "attempt", attempt)
			break
		}
		log.Debug("Operation failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max", maxRetries,
			"error", err,
		)
	}

	return result, err
}
