package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/discordops/auth"
	"github.com/jonwraymond/discordops/config"
	"github.com/jonwraymond/discordops/health"
	"github.com/jonwraymond/discordops/internal/server"
	"github.com/jonwraymond/discordops/observe"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and ops endpoints",
		Long: `Serve the ops HTTP surface.

Probes (/healthz, /readyz, /health) and /metrics are public. /ratelimit,
/breaker and /guilds require an API key (X-API-Key) or a bearer JWT;
POST /ratelimit/reset and /breaker/reset also require the admin role.
SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) (err error) {
	oc := a.cfg.ObserveSettings()
	oc.Version = Version
	oc.Logging.Output = a.stderr
	obs, err := observe.NewObserver(ctx, oc)
	if err != nil {
		return err
	}
	logger := obs.Logger()

	rt, err := newRuntime(ctx, a.cfg, logger, obs)
	if err != nil {
		return errors.Join(err, obs.Shutdown(context.Background()))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		err = errors.Join(err, rt.Close(), obs.Shutdown(shutdownCtx))
	}()

	deps := server.Deps{
		Service:    rt.service,
		Aggregator: newAggregator(a.cfg, rt),
		Authn:      newAuthenticator(a.cfg),
		Logger:     logger,
	}
	if oc.Metrics.Enabled && oc.Metrics.Exporter == "prometheus" {
		deps.Metrics = promhttp.Handler()
	}
	if deps.Authn == nil {
		logger.Warn(ctx, "no api_keys or jwt_secret configured; ops endpoints disabled")
	}

	srv := server.New(a.cfg.Server.Addr, server.NewRouter(deps))
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", observe.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newAggregator(cfg *config.Config, rt *runtime) *health.Aggregator {
	return health.NewAggregator(health.AggregatorConfig{Timeout: 5 * time.Second},
		health.NewBreakerChecker(rt.client.Breaker()),
		health.NewRateLimitChecker(rt.client.Tracker(), health.RateLimitCheckerConfig{
			ErrorThreshold: cfg.Server.HealthErrorThreshold,
		}),
		health.NewStoreChecker(rt.store),
	)
}

// newAuthenticator returns nil when no credential source is configured.
func newAuthenticator(cfg *config.Config) auth.Authenticator {
	var chain auth.Chain
	if len(cfg.Server.APIKeys) > 0 {
		chain = append(chain, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, cfg.APIKeyStore()))
	}
	if cfg.Server.JWTSecret != "" {
		j, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			Secret: []byte(cfg.Server.JWTSecret),
			Issuer: cfg.Server.JWTIssuer,
		})
		if err == nil {
			chain = append(chain, j)
		}
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}
