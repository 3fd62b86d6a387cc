package cache

import "context"

// Loader fetches a value on cache miss.
type Loader func(ctx context.Context) ([]byte, error)

// ReadThrough caches the results of idempotent loads.
//
// Contract:
//   - Errors from the loader are returned unchanged and are NOT cached.
//   - A disabled policy (DefaultTTL=0) calls the loader every time.
//   - Keys are derived through the Keyer, so inputs may carry credentials.
type ReadThrough struct {
	cache  Cache
	keyer  Keyer
	policy Policy
}

// NewReadThrough creates a read-through cache. A nil keyer means
// HashKeyer{}.
func NewReadThrough(c Cache, keyer Keyer, policy Policy) *ReadThrough {
	if keyer == nil {
		keyer = HashKeyer{}
	}
	return &ReadThrough{cache: c, keyer: keyer, policy: policy}
}

// Load returns the cached value for (namespace, input) or calls load and
// stores its result. The boolean reports a cache hit.
func (r *ReadThrough) Load(ctx context.Context, namespace string, input any, load Loader) ([]byte, bool, error) {
	if r == nil || r.cache == nil || !r.policy.ShouldCache() {
		val, err := load(ctx)
		return val, false, err
	}

	key, err := r.keyer.Key(namespace, input)
	if err != nil {
		// Key generation failed - load without caching
		val, err := load(ctx)
		return val, false, err
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	val, err := load(ctx)
	if err != nil {
		return val, false, err
	}

	if ttl := r.policy.EffectiveTTL(0); ttl > 0 {
		_ = r.cache.Set(ctx, key, val, ttl)
	}
	return val, false, nil
}

// Invalidate drops the cached value for (namespace, input).
func (r *ReadThrough) Invalidate(ctx context.Context, namespace string, input any) error {
	if r == nil || r.cache == nil {
		return nil
	}
	key, err := r.keyer.Key(namespace, input)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, key)
}
