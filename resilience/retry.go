package resilience

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Backoff returns the wait before retry n, counting from 1.
type Backoff func(n int) time.Duration

// Constant waits d before every retry.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Linear waits n*step before retry n, capped at limit when limit > 0.
func Linear(step, limit time.Duration) Backoff {
	return func(n int) time.Duration {
		return capped(step*time.Duration(n), limit)
	}
}

// Exponential waits base*factor^(n-1) before retry n, capped at limit when
// limit > 0.
func Exponential(base, limit time.Duration, factor float64) Backoff {
	return func(n int) time.Duration {
		d := float64(base)
		for range n - 1 {
			d *= factor
			if limit > 0 && d >= float64(limit) {
				return limit
			}
		}
		return capped(time.Duration(d), limit)
	}
}

// Jittered adds up to frac*d of random delay to every wait of b.
func Jittered(b Backoff, frac float64) Backoff {
	return func(n int) time.Duration {
		d := b(n)
		spread := int64(float64(d) * frac)
		if spread <= 0 {
			return d
		}
		// #nosec G404 -- timing variance, not security.
		return d + time.Duration(rand.Int64N(spread))
	}
}

func capped(d, limit time.Duration) time.Duration {
	if limit > 0 && d > limit {
		return limit
	}
	return d
}

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call. Default: 3
	MaxAttempts int

	// Backoff spaces attempts. Default: Jittered(Exponential(100ms, 30s, 2), 0.25)
	Backoff Backoff

	// RetryIf selects retryable errors. Default: every error.
	RetryIf func(err error) bool

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep waits between attempts. Default: SleepContext
	Sleep func(ctx context.Context, d time.Duration) error
}

// Retry re-runs an operation until it succeeds, fails permanently or runs
// out of attempts.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff == nil {
		config.Backoff = Jittered(Exponential(100*time.Millisecond, 30*time.Second, 2), 0.25)
	}
	if config.RetryIf == nil {
		config.RetryIf = func(error) bool { return true }
	}
	if config.Sleep == nil {
		config.Sleep = SleepContext
	}
	return &Retry{config: config}
}

// Execute calls op until it returns nil or a non-retryable error. An error
// carrying a RetryAfter delay is waited out for exactly that delay instead
// of the backoff. Once attempts run out the error matches both
// ErrMaxRetriesExceeded and the last failure.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		switch {
		case err == nil:
			return nil
		case !r.config.RetryIf(err):
			return err
		case attempt >= r.config.MaxAttempts:
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempt, err)
		}

		delay, ok := retryAfter(err)
		if !ok {
			delay = r.config.Backoff(attempt)
		}
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
		if err := r.config.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
