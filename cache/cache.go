package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength bounds keys accepted by the built-in stores.
const MaxKeyLength = 512

var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache is a byte store with per-key TTL, safe for concurrent use.
//
// Get reports a miss for expired entries and for backend failures alike,
// so callers treat the store as advisory. Set with ttl <= 0 stores nothing
// and Delete of a missing key is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects blank keys, keys containing line breaks and keys
// longer than MaxKeyLength.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "", strings.ContainsAny(key, "\r\n"):
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return ErrKeyTooLong
	}
	return nil
}
