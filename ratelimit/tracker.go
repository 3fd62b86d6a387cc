package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/jonwraymond/discordops/cache"
)

// Store keys for the shared rate-limit record and block flag.
var (
	DefaultStatsKey = cache.StateKey("discord", "rate_limit_stats")
	DefaultBlockKey = cache.StateKey("discord", "rate_limit_block")
)

// FailureRecorder is notified of every 429. resilience.CircuitBreaker
// satisfies it.
type FailureRecorder interface {
	RecordFailure(ctx context.Context)
}

// Config configures a Tracker.
type Config struct {
	// Store holds the snapshot and block flag.
	// Default: a private in-memory cache
	Store cache.Cache

	// StatsKey and BlockKey override the store keys.
	StatsKey string
	BlockKey string

	// TTL bounds how long an untouched snapshot survives.
	// Default: cache.StateTTL
	TTL time.Duration

	// Breaker receives a failure for every 429. Optional.
	Breaker FailureRecorder

	// Clock returns the current time. Default: time.Now
	Clock func() time.Time
}

// Tracker records Discord rate-limit state.
type Tracker struct {
	config Config
	mu     sync.Mutex
}

// NewTracker creates a tracker with defaults applied.
func NewTracker(config Config) *Tracker {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Store == nil {
		config.Store = cache.NewMemoryCache(cache.DefaultPolicy(), cache.WithClock(config.Clock))
	}
	if config.StatsKey == "" {
		config.StatsKey = DefaultStatsKey
	}
	if config.BlockKey == "" {
		config.BlockKey = DefaultBlockKey
	}
	if config.TTL <= 0 {
		config.TTL = cache.StateTTL
	}
	return &Tracker{config: config}
}

// ShouldBlock reports whether a previous response exhausted the quota and
// its reset window has not yet elapsed.
func (t *Tracker) ShouldBlock(ctx context.Context) bool {
	_, ok := t.config.Store.Get(ctx, t.config.BlockKey)
	return ok
}

// BlockedFor returns how long the block flag has left, derived from the
// last recorded reset, or 0 when not blocked.
func (t *Tracker) BlockedFor(ctx context.Context) time.Duration {
	if !t.ShouldBlock(ctx) {
		return 0
	}
	snap := t.Snapshot(ctx)
	if snap.ResetAfter == nil {
		return 0
	}
	end := snap.UpdatedAt.Add(time.Duration(*snap.ResetAfter * float64(time.Second)))
	if d := end.Sub(t.config.Clock()); d > 0 {
		return d
	}
	return 0
}

// RecordResponse folds one response into the snapshot.
//
// failed marks the response as an error for ErrorCount. A 429 also counts
// as rate-limited and is reported to the breaker.
func (t *Tracker) RecordResponse(ctx context.Context, header http.Header, failed bool, statusCode int) {
	h := ParseHeaders(header)
	limited := statusCode == http.StatusTooManyRequests

	t.mu.Lock()
	snap := t.load(ctx)
	snap.TotalRequests++
	if failed {
		snap.ErrorCount++
	}
	if limited {
		snap.RateLimitedCount++
	}
	snap.apply(h)
	snap.UpdatedAt = t.config.Clock()
	t.save(ctx, snap)

	if h.Remaining != nil && *h.Remaining == 0 {
		if d := t.blockDuration(h); d > 0 {
			_ = t.config.Store.Set(ctx, t.config.BlockKey, []byte("1"), d)
		}
	}
	t.mu.Unlock()

	if limited && t.config.Breaker != nil {
		t.config.Breaker.RecordFailure(ctx)
	}
}

// Snapshot returns the current record. Missing or unreadable state reads
// as an empty snapshot.
func (t *Tracker) Snapshot(ctx context.Context) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// Reset clears the snapshot and the block flag.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.config.Store.Delete(ctx, t.config.StatsKey); err != nil {
		return err
	}
	return t.config.Store.Delete(ctx, t.config.BlockKey)
}

func (t *Tracker) blockDuration(h Headers) time.Duration {
	if d, ok := h.ResetAfterDuration(); ok {
		return d
	}
	if h.ResetAt != nil {
		return h.ResetAt.Sub(t.config.Clock())
	}
	return 0
}

func (t *Tracker) load(ctx context.Context) Snapshot {
	var snap Snapshot
	raw, ok := t.config.Store.Get(ctx, t.config.StatsKey)
	if !ok {
		return snap
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}
	}
	return snap
}

func (t *Tracker) save(ctx context.Context, snap Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = t.config.Store.Set(ctx, t.config.StatsKey, raw, t.config.TTL)
}
