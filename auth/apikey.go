package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"
)

// APIKey is a registered ops key. Only its hash is kept.
type APIKey struct {
	ID        string
	Hash      string
	Principal string
	Roles     []string

	// ExpiresAt is zero for keys that never expire.
	ExpiresAt time.Time
}

// APIKeyStore finds keys by hash. Lookup returns nil, nil for an unknown
// hash.
type APIKeyStore interface {
	Lookup(ctx context.Context, hash string) (*APIKey, error)
}

// APIKeyConfig configures APIKeyAuthenticator.
type APIKeyConfig struct {
	// Header carries the key. Default: "X-API-Key"
	Header string

	// Clock is used for expiry. Default: time.Now
	Clock func() time.Time
}

// APIKeyAuthenticator accepts keys registered in an APIKeyStore.
type APIKeyAuthenticator struct {
	header string
	clock  func() time.Time
	store  APIKeyStore
}

// NewAPIKeyAuthenticator creates an authenticator backed by store.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	a := &APIKeyAuthenticator{header: config.Header, clock: config.Clock, store: store}
	if a.header == "" {
		a.header = "X-API-Key"
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	return a
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return string(AuthMethodAPIKey) }

// Authenticate looks up the key in h.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	raw := strings.TrimSpace(h.Get(a.header))
	if raw == "" {
		return nil, ErrMissingCredentials
	}

	key, err := a.store.Lookup(ctx, HashAPIKey(raw))
	switch {
	case err != nil:
		return nil, err
	case key == nil:
		return nil, ErrInvalidCredentials
	case !key.ExpiresAt.IsZero() && a.clock().After(key.ExpiresAt):
		return nil, ErrTokenExpired
	}

	return &Identity{
		Principal: key.Principal,
		Roles:     key.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: key.ExpiresAt,
		Claims:    map[string]any{"key_id": key.ID},
	}, nil
}

// HashAPIKey returns the hex SHA-256 of key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// MemoryAPIKeyStore holds keys in a map keyed by hash.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]APIKey
}

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]APIKey)}
}

// Lookup returns a copy of the key stored under hash.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, hash string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[hash]
	if !ok {
		return nil, nil
	}
	return &key, nil
}

// Put stores key, replacing any key with the same hash.
func (s *MemoryAPIKeyStore) Put(key APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Hash] = key
}

// AddKey registers the plaintext secret for principal.
func (s *MemoryAPIKeyStore) AddKey(id, secret, principal string, roles ...string) {
	s.Put(APIKey{ID: id, Hash: HashAPIKey(secret), Principal: principal, Roles: roles})
}

// Remove drops the key stored under hash.
func (s *MemoryAPIKeyStore) Remove(hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, hash)
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
