// Package resilience provides the failure-isolation patterns used by the
// Discord client.
//
// # Patterns
//
//   - Circuit Breaker: stops issuing calls after consecutive failures and
//     lets trial calls through once a cool-down has elapsed. State lives in
//     a cache.Cache so several processes can share one breaker.
//
//   - Retry: retries transient failures, spacing attempts with a Backoff
//     and honoring server-directed delays carried by errors that
//     implement RetryAfter.
//
//   - WithDeadline: bounds a single attempt.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: time.Minute,
//	    Store:        store,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    Backoff:     resilience.Linear(time.Second, 0),
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    if cb.IsOpen(ctx) {
//	        return resilience.ErrCircuitOpen
//	    }
//	    return callDiscord(ctx)
//	})
package resilience
