package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ctxutil"
)

// Clock supplies the current time to core operations.
type Clock func() time.Time

func orSystemClock(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// requireActor returns the caller identity every mutating operation needs.
func requireActor(ctx context.Context) (ctxutil.Actor, error) {
	actor, ok := ctxutil.ActorFromContext(ctx)
	if !ok || actor.Name() == "" {
		return ctxutil.Actor{}, procerr.New(procerr.CodeInvalidArgument, "actor identity is required")
	}
	return actor, nil
}

// retryOnConflict reruns fn while it fails with CONCURRENT_MODIFICATION, at
// most retries extra times. fn must reload state on every call.
func retryOnConflict[T any](ctx context.Context, retries int, onConflict func(attempt int, err error), fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if !procerr.IsCode(err, procerr.CodeConcurrentModification) || attempt >= retries {
			return zero, err
		}
		onConflict(attempt+1, err)
	}
}
