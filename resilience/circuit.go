package resilience

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/discordops/cache"
)

// DefaultBreakerKey is the shared-store key holding breaker state.
var DefaultBreakerKey = cache.StateKey("discord", "circuit_breaker")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the service recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as its string form.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "closed", "":
		*s = StateClosed
	case "open":
		*s = StateOpen
	case "half-open":
		*s = StateHalfOpen
	default:
		return fmt.Errorf("resilience: unknown breaker state %q", b)
	}
	return nil
}

// BreakerState is the persisted breaker record.
type BreakerState struct {
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	State               State      `json:"state"`
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before a trial call.
	// Default: 60 seconds
	ResetTimeout time.Duration

	// Store holds the breaker record. Sharing a store shares the breaker.
	// Default: a private in-memory cache
	Store cache.Cache

	// Key is the store key. Default: DefaultBreakerKey
	Key string

	// TTL bounds how long an untouched record survives.
	// Default: cache.StateTTL
	TTL time.Duration

	// ReopenOnHalfOpenFailure re-opens the circuit on the first failed
	// trial call. When false, half-open failures accumulate toward
	// MaxFailures like closed ones.
	ReopenOnHalfOpenFailure bool

	// Clock returns the current time. Default: time.Now
	Clock func() time.Time

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure in Execute.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker implements the circuit breaker pattern over a shared store.
//
// The mutex serializes read-modify-write within one process only. Across
// processes, concurrent updates may lose an increment; the breaker
// tolerates that.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	mu     sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 60 * time.Second
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Store == nil {
		config.Store = cache.NewMemoryCache(cache.DefaultPolicy(), cache.WithClock(config.Clock))
	}
	if config.Key == "" {
		config.Key = DefaultBreakerKey
	}
	if config.TTL <= 0 {
		config.TTL = cache.StateTTL
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{config: config}
}

// Execute runs the operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if cb.IsOpen(ctx) {
		return ErrCircuitOpen
	}

	err := op(ctx)
	if cb.config.IsFailure(err) {
		cb.RecordFailure(ctx)
	} else {
		cb.RecordSuccess(ctx)
	}
	return err
}

// IsOpen reports whether calls must be refused. An open circuit whose
// cool-down has elapsed moves to half-open here and reports false.
func (cb *CircuitBreaker) IsOpen(ctx context.Context) bool {
	return cb.State(ctx) == StateOpen
}

// State returns the current circuit state, applying the lazy
// open-to-half-open transition.
func (cb *CircuitBreaker) State(ctx context.Context) State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	st := cb.load(ctx)
	if cb.advanceLocked(&st) {
		cb.save(ctx, st)
		cb.notify(StateOpen, StateHalfOpen)
	}
	return st.State
}

// RecordFailure counts a failure and opens the circuit at the threshold.
func (cb *CircuitBreaker) RecordFailure(ctx context.Context) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	st := cb.load(ctx)
	from := st.State
	if cb.advanceLocked(&st) {
		from = StateHalfOpen
		cb.notify(StateOpen, StateHalfOpen)
	}

	now := cb.config.Clock()
	st.ConsecutiveFailures++
	st.LastFailureAt = &now

	switch {
	case st.State == StateHalfOpen && cb.config.ReopenOnHalfOpenFailure:
		st.State = StateOpen
	case st.ConsecutiveFailures >= cb.config.MaxFailures:
		st.State = StateOpen
	}

	cb.save(ctx, st)
	if from != st.State {
		cb.notify(from, st.State)
	}
}

// RecordSuccess closes a half-open circuit. Counters are left untouched;
// they were cleared when the circuit left the open state.
func (cb *CircuitBreaker) RecordSuccess(ctx context.Context) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	st := cb.load(ctx)
	if cb.advanceLocked(&st) {
		cb.notify(StateOpen, StateHalfOpen)
		cb.save(ctx, st)
	}
	if st.State != StateHalfOpen {
		return
	}

	st.State = StateClosed
	cb.save(ctx, st)
	cb.notify(StateHalfOpen, StateClosed)
}

// Reset clears the stored record, returning the breaker to closed.
func (cb *CircuitBreaker) Reset(ctx context.Context) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	old := cb.load(ctx).State
	_ = cb.config.Store.Delete(ctx, cb.config.Key)

	if old != StateClosed {
		cb.notify(old, StateClosed)
	}
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics(ctx context.Context) CircuitBreakerMetrics {
	state := cb.State(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	st := cb.load(ctx)
	m := CircuitBreakerMetrics{
		State:       state,
		Failures:    st.ConsecutiveFailures,
		MaxFailures: cb.config.MaxFailures,
	}
	if st.LastFailureAt != nil {
		m.LastFailure = *st.LastFailureAt
		if state == StateOpen {
			m.OpenUntil = st.LastFailureAt.Add(cb.config.ResetTimeout)
		}
	}
	return m
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	MaxFailures int
	LastFailure time.Time
	// OpenUntil is when an open circuit admits a trial call. Zero otherwise.
	OpenUntil time.Time
}

// load reads the stored record. A missing or unreadable record is closed.
func (cb *CircuitBreaker) load(ctx context.Context) BreakerState {
	var st BreakerState
	raw, ok := cb.config.Store.Get(ctx, cb.config.Key)
	if !ok {
		return st
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return BreakerState{}
	}
	return st
}

func (cb *CircuitBreaker) save(ctx context.Context, st BreakerState) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = cb.config.Store.Set(ctx, cb.config.Key, raw, cb.config.TTL)
}

// advanceLocked moves an open circuit to half-open once the cool-down has
// elapsed, clearing the failure count. Returns true if st changed.
func (cb *CircuitBreaker) advanceLocked(st *BreakerState) bool {
	if st.State != StateOpen {
		return false
	}
	if st.LastFailureAt != nil && cb.config.Clock().Sub(*st.LastFailureAt) < cb.config.ResetTimeout {
		return false
	}
	st.State = StateHalfOpen
	st.ConsecutiveFailures = 0
	return true
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
