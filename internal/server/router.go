// Package server exposes the ops HTTP surface of discordops: health
// probes, rate-limit and breaker state, and admin resets.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/discordops/auth"
	"github.com/jonwraymond/discordops/discord"
	"github.com/jonwraymond/discordops/health"
	"github.com/jonwraymond/discordops/observe"
)

// Deps are the components the router serves.
type Deps struct {
	Service    *discord.Service
	Aggregator *health.Aggregator

	// Authn guards every route except the health probes and /metrics.
	// When nil the guarded routes are not mounted.
	Authn auth.Authenticator

	// Metrics serves /metrics when set.
	Metrics http.Handler

	Logger observe.Logger
}

// NewRouter builds the ops router.
//
//	GET  /healthz, /readyz, /health, /health/{name}   public
//	GET  /metrics                                     public
//	GET  /ratelimit, /breaker, /guilds                authenticated
//	POST /ratelimit/reset, /breaker/reset             admin role
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = observe.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	health.RegisterHandlers(r, deps.Aggregator)
	r.Get("/health/{name}", func(w http.ResponseWriter, req *http.Request) {
		health.CheckHandler(deps.Aggregator, chi.URLParam(req, "name")).ServeHTTP(w, req)
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	if deps.Authn == nil || deps.Service == nil {
		return r
	}

	client := deps.Service.Client()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Authn, deps.Logger))

		r.Get("/ratelimit", health.RateLimitHandler(client.Tracker()))
		r.Get("/breaker", health.BreakerHandler(client.Breaker()))
		r.Get("/guilds", guildsHandler(deps.Service))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/ratelimit/reset", func(w http.ResponseWriter, req *http.Request) {
				ctx := req.Context()
				if err := client.Tracker().Reset(ctx); err != nil {
					deps.Logger.Error(ctx, "rate limit reset failed", observe.Field{Key: "error", Value: err})
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
					return
				}
				deps.Logger.Info(ctx, "rate limit state reset", observe.Field{Key: "principal", Value: auth.PrincipalFromContext(ctx)})
				w.WriteHeader(http.StatusNoContent)
			})
			r.Post("/breaker/reset", func(w http.ResponseWriter, req *http.Request) {
				ctx := req.Context()
				client.Breaker().Reset(ctx)
				deps.Logger.Info(ctx, "circuit breaker reset", observe.Field{Key: "principal", Value: auth.PrincipalFromContext(ctx)})
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})
	return r
}

func guildsHandler(svc *discord.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guilds, err := svc.BotGuilds(r.Context())
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, guilds)
	}
}

// New returns an http.Server for handler with conservative timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
