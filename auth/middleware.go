package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/discordops/observe"
)

// Middleware authenticates every request with authn. Accepted requests
// carry the Identity in their context. Rejected ones receive 401 and an
// authenticator failure receives 500. A nil logger discards records.
func Middleware(authn Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			path := observe.Field{Key: "path", Value: r.URL.Path}

			id, err := authn.Authenticate(ctx, r.Header)
			switch {
			case err == nil:
			case Rejected(err):
				logger.Warn(ctx, "authentication rejected", path, observe.Field{Key: "error", Value: err})
				unauthorized(w, err)
				return
			default:
				logger.Error(ctx, "authentication error", path, observe.Field{Key: "error", Value: err})
				writeError(w, http.StatusInternalServerError, errors.New("auth: internal error"))
				return
			}

			logger.Debug(ctx, "authenticated",
				observe.Field{Key: "principal", Value: id.Principal},
				observe.Field{Key: "method", Value: string(id.Method)},
			)
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// RequireRole answers 403 unless the authenticated identity holds role.
// It must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				unauthorized(w, ErrMissingCredentials)
				return
			}
			if !id.HasRole(role) {
				writeError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="discordops"`)
	writeError(w, http.StatusUnauthorized, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
