package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WithDeadline runs op under a deadline d from now. op must honor its
// context; nothing is abandoned. A failure caused by that deadline matches
// both ErrTimeout and op's own error. Cancellation of ctx itself is
// returned as is. A non-positive d runs op without a deadline.
func WithDeadline(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := op(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, d, err)
	}
	return err
}
