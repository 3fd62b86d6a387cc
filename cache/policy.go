package cache

import "time"

// StateTTL is how long breaker and rate-limit state survive without writes.
const StateTTL = time.Hour

// Policy configures TTL behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, read-through caching is disabled.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Larger TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the policy used for shared client state.
// DefaultTTL: 1 hour, MaxTTL: 24 hours
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: StateTTL,
		MaxTTL:     24 * time.Hour,
	}
}

// ResponsePolicy returns the policy used for cached GET responses.
// DefaultTTL: 30 seconds, MaxTTL: 5 minutes
func ResponsePolicy() Policy {
	return Policy{
		DefaultTTL: 30 * time.Second,
		MaxTTL:     5 * time.Minute,
	}
}

// NoCachePolicy returns a policy that disables read-through caching.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if read-through caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	return p.Clamp(ttl)
}

// Clamp limits ttl to MaxTTL when one is set.
func (p Policy) Clamp(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
