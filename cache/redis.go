package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, shared by every process that points
// at the same server. TTLs are enforced by Redis key expiry.
type RedisCache struct {
	client redis.UniversalClient
	policy Policy
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client redis.UniversalClient, policy Policy) *RedisCache {
	return &RedisCache{client: client, policy: policy}
}

// RedisOptions configures a Redis connection for DialRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout bounds the initial ping.
	// Default: 5 seconds
	DialTimeout time.Duration
}

// DialRedis connects to Redis and verifies the connection with a ping.
func DialRedis(ctx context.Context, opts RedisOptions, policy Policy) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, errors.New("cache: redis address is required")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCache(client, policy), nil
}

// Get retrieves a value. Backend errors are reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a value with the given TTL, clamped by the policy's MaxTTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, key, value, c.policy.Clamp(ttl)).Err()
}

// Delete removes a value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Ping reports whether the Redis server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
