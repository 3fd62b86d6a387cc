package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGuard(t *testing.T) (http.Handler, *JWTAuthenticator) {
	t.Helper()
	store := NewMemoryAPIKeyStore()
	store.AddKey("viewer", "view-key", "viewer")
	store.AddKey("admin", "admin-key", "root", RoleAdmin)

	jwtAuth, err := NewJWTAuthenticator(JWTConfig{Secret: testSecret})
	if err != nil {
		t.Fatal(err)
	}
	authn := Chain{NewAPIKeyAuthenticator(APIKeyConfig{}, store), jwtAuth}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PrincipalFromContext(r.Context())))
	})

	mux := http.NewServeMux()
	mux.Handle("/stats", Middleware(authn, nil)(final))
	mux.Handle("/reset", Middleware(authn, nil)(RequireRole(RoleAdmin)(final)))
	return mux, jwtAuth
}

func TestMiddleware(t *testing.T) {
	h, jwtAuth := newTestGuard(t)
	token, err := jwtAuth.Issue("alice", []string{RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		header   string
		value    string
		wantCode int
		wantBody string
	}{
		{"no credentials", "/stats", "", "", http.StatusUnauthorized, ""},
		{"bad key", "/stats", "X-API-Key", "nope", http.StatusUnauthorized, ""},
		{"api key", "/stats", "X-API-Key", "view-key", http.StatusOK, "viewer"},
		{"jwt", "/stats", "Authorization", "Bearer " + token, http.StatusOK, "alice"},
		{"viewer cannot reset", "/reset", "X-API-Key", "view-key", http.StatusForbidden, ""},
		{"admin key resets", "/reset", "X-API-Key", "admin-key", http.StatusOK, "root"},
		{"admin jwt resets", "/reset", "Authorization", "Bearer " + token, http.StatusOK, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("Code = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestMiddleware_ErrorBody(t *testing.T) {
	h, _ := newTestGuard(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != ErrMissingCredentials.Error() {
		t.Errorf("error = %q", body["error"])
	}
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	h := RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached without identity")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Code = %d, want 401", rec.Code)
	}
}

type brokenAuthenticator struct{}

func (brokenAuthenticator) Name() string { return "broken" }

func (brokenAuthenticator) Authenticate(context.Context, http.Header) (*Identity, error) {
	return nil, errors.New("key store unreachable")
}

func TestMiddleware_InternalError(t *testing.T) {
	h := Middleware(brokenAuthenticator{}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached after authenticator failure")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "unreachable") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}
