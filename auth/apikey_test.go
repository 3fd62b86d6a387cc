package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func apiKeyHeader(key string) http.Header {
	h := http.Header{}
	if key != "" {
		h.Set("X-API-Key", key)
	}
	return h
}

func TestAPIKeyAuthenticator(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryAPIKeyStore()
	store.AddKey("k1", "ops-key", "ops", RoleAdmin)
	store.Put(APIKey{ID: "k2", Hash: HashAPIKey("old-key"), Principal: "old", ExpiresAt: now.Add(-time.Hour)})

	a := NewAPIKeyAuthenticator(APIKeyConfig{Clock: func() time.Time { return now }}, store)
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		principal string
		wantErr   error
	}{
		{"valid", "ops-key", "ops", nil},
		{"valid with spaces", "  ops-key ", "ops", nil},
		{"unknown", "nope", "", ErrInvalidCredentials},
		{"expired", "old-key", "", ErrTokenExpired},
		{"missing", "", "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(ctx, apiKeyHeader(tt.key))
			if tt.wantErr != nil {
				if id != nil || !errors.Is(err, tt.wantErr) {
					t.Errorf("Authenticate() = %+v, %v; want %v", id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if id.Principal != tt.principal || id.Method != AuthMethodAPIKey {
				t.Fatalf("identity = %+v", id)
			}
			if id.Claims["key_id"] != "k1" || !id.HasRole(RoleAdmin) {
				t.Errorf("identity = %+v", id)
			}
		})
	}
}

type failingKeyStore struct{}

func (failingKeyStore) Lookup(context.Context, string) (*APIKey, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator(APIKeyConfig{}, failingKeyStore{})
	_, err := a.Authenticate(context.Background(), apiKeyHeader("k"))
	if err == nil || Rejected(err) {
		t.Fatalf("err = %v, want an internal error", err)
	}
}

func TestMemoryAPIKeyStore_Remove(t *testing.T) {
	store := NewMemoryAPIKeyStore()
	store.AddKey("k1", "secret", "ops")
	store.Remove(HashAPIKey("secret"))

	info, err := store.Lookup(context.Background(), HashAPIKey("secret"))
	if err != nil || info != nil {
		t.Errorf("Lookup() after Remove = %v, %v", info, err)
	}
}

func TestHashAPIKey(t *testing.T) {
	if HashAPIKey("a") == HashAPIKey("b") {
		t.Error("distinct keys hash equal")
	}
	if len(HashAPIKey("a")) != 64 {
		t.Errorf("hash length = %d, want 64", len(HashAPIKey("a")))
	}
}
