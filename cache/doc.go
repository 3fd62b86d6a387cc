// Package cache provides the shared key-value store that backs Discord
// client state.
//
// The circuit breaker and the rate-limit tracker persist their state through
// the Cache interface so several bot workers can share one view of the
// Discord API. MemoryCache serves single-process deployments and tests
// (its clock is injectable); RedisCache serves multi-process deployments.
//
// The package also offers a hashed Keyer and a ReadThrough helper used to
// cache idempotent GET responses without putting credentials into keys.
package cache
