package zkgroup

import (
	"context"
	"time"

	"github.com/luno/jettison/errors"
)

type result[T any] struct {
	value T
	err   error
}

// await runs op in its own goroutine and races its result against the
// context. If the context carries no deadline the op runs to completion.
// If the deadline elapses first, await returns ErrTimeout and the op's
// eventual result is delivered into a buffered channel and discarded, so a
// late completion has no observable effect. Caller cancellation is returned
// as-is rather than as ErrTimeout.
func await[T any](ctx context.Context, op func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		var r result[T]
		r.value, r.err = op()
		ch <- r
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, errors.Wrap(ErrTimeout, "")
		}
		return zero, ctx.Err()
	}
}

// opContext bounds ctx with d. A zero or negative d applies no deadline.
func opContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
