package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/discordops/cache"
	"github.com/jonwraymond/discordops/ratelimit"
	"github.com/jonwraymond/discordops/resilience"
)

// BreakerSource exposes circuit breaker statistics.
// *resilience.CircuitBreaker satisfies it.
type BreakerSource interface {
	Metrics(ctx context.Context) resilience.CircuitBreakerMetrics
}

// BreakerChecker reports the Discord circuit breaker. An open circuit is
// unhealthy; a half-open one is degraded.
type BreakerChecker struct {
	source BreakerSource
}

// NewBreakerChecker creates a checker for source.
func NewBreakerChecker(source BreakerSource) *BreakerChecker {
	return &BreakerChecker{source: source}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string { return "circuit_breaker" }

// Check performs the health check.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	m := c.source.Metrics(ctx)
	details := map[string]any{
		"state":        m.State.String(),
		"failures":     m.Failures,
		"max_failures": m.MaxFailures,
	}
	if !m.LastFailure.IsZero() {
		details["last_failure"] = m.LastFailure.UTC().Format(time.RFC3339)
	}

	switch m.State {
	case resilience.StateOpen:
		details["open_until"] = m.OpenUntil.UTC().Format(time.RFC3339)
		return Unhealthy("circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// RateLimitSource exposes rate-limit state. *ratelimit.Tracker satisfies it.
type RateLimitSource interface {
	Snapshot(ctx context.Context) ratelimit.Snapshot
	ShouldBlock(ctx context.Context) bool
}

// RateLimitCheckerConfig configures the rate-limit checker.
type RateLimitCheckerConfig struct {
	// ErrorThreshold is the error percentage above which the check
	// degrades. Default: 25
	ErrorThreshold float64

	// MinRequests is the sample size below which the error percentage is
	// ignored. Default: 20
	MinRequests int64
}

// RateLimitChecker reports Discord rate-limit pressure.
type RateLimitChecker struct {
	source RateLimitSource
	config RateLimitCheckerConfig
}

// NewRateLimitChecker creates a checker for source.
func NewRateLimitChecker(source RateLimitSource, config RateLimitCheckerConfig) *RateLimitChecker {
	if config.ErrorThreshold <= 0 {
		config.ErrorThreshold = 25
	}
	if config.MinRequests <= 0 {
		config.MinRequests = 20
	}
	return &RateLimitChecker{source: source, config: config}
}

// Name returns the name of this checker.
func (c *RateLimitChecker) Name() string { return "rate_limit" }

// Check performs the health check. Rate limiting never makes the service
// unhealthy; it only degrades it.
func (c *RateLimitChecker) Check(ctx context.Context) Result {
	snap := c.source.Snapshot(ctx)
	details := map[string]any{
		"total_requests":     snap.TotalRequests,
		"error_count":        snap.ErrorCount,
		"rate_limited_count": snap.RateLimitedCount,
		"error_percentage":   snap.ErrorPercentage(),
		"used_percentage":    snap.UsedPercentage(),
	}
	if snap.Remaining != nil {
		details["remaining"] = *snap.Remaining
	}

	if c.source.ShouldBlock(ctx) {
		return Degraded("rate limit window exhausted").WithDetails(details)
	}
	if snap.TotalRequests >= c.config.MinRequests && snap.ErrorPercentage() > c.config.ErrorThreshold {
		return Degraded(fmt.Sprintf("error rate %.1f%% above %.1f%%", snap.ErrorPercentage(), c.config.ErrorThreshold)).
			WithDetails(details)
	}
	return Healthy("within rate limits").WithDetails(details)
}

// StoreChecker probes the shared state store with a write, read and
// delete of a scratch key.
type StoreChecker struct {
	store cache.Cache
	key   string
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store cache.Cache) *StoreChecker {
	return &StoreChecker{store: store, key: cache.StateKey("health", "probe")}
}

// Name returns the name of this checker.
func (c *StoreChecker) Name() string { return "store" }

// Check performs the health check.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}
	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := c.store.Set(ctx, c.key, want, time.Minute); err != nil {
		return Unhealthy("store write failed", fmt.Errorf("%w: %w", ErrCheckFailed, err))
	}
	got, ok := c.store.Get(ctx, c.key)
	_ = c.store.Delete(ctx, c.key)
	if !ok || string(got) != string(want) {
		return Unhealthy("store read-back mismatch", ErrCheckFailed)
	}
	return Healthy("store reachable")
}
