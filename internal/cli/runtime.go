package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/discordops/cache"
	"github.com/jonwraymond/discordops/config"
	"github.com/jonwraymond/discordops/discord"
	"github.com/jonwraymond/discordops/observe"
	"github.com/jonwraymond/discordops/ratelimit"
	"github.com/jonwraymond/discordops/resilience"
)

// runtime holds the wired components shared by every command.
type runtime struct {
	store   cache.Cache
	client  *discord.Client
	service *discord.Service
	closers []func() error
}

// newRuntime wires the store, breaker, tracker and client. obs is optional
// and, when set, instruments every HTTP attempt.
func newRuntime(ctx context.Context, cfg *config.Config, logger observe.Logger, obs observe.Observer) (*runtime, error) {
	cred, err := cfg.Credential()
	if err != nil {
		return nil, err
	}

	rt := &runtime{}
	if cfg.Redis.Enabled() {
		rc, err := cache.DialRedis(ctx, cache.RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		}, cache.DefaultPolicy())
		if err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		rt.store = rc
		rt.closers = append(rt.closers, rc.Close)
		logger.Debug(ctx, "using redis state store", observe.Field{Key: "addr", Value: cfg.Redis.Addr})
	} else {
		rt.store = cache.NewMemoryCache(cache.DefaultPolicy())
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:             cfg.Breaker.MaxFailures,
		ResetTimeout:            cfg.Breaker.ResetTimeout,
		ReopenOnHalfOpenFailure: cfg.Breaker.ReopenOnHalfOpenFailure,
		Store:                   rt.store,
		OnStateChange: func(from, to resilience.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()},
			)
		},
	})

	cc := cfg.ClientConfig()
	cc.Store = rt.store
	cc.Breaker = breaker
	cc.Tracker = ratelimit.NewTracker(ratelimit.Config{Store: rt.store, Breaker: breaker})
	cc.Logger = logger
	if obs != nil {
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		cc.Middleware = mw
	}

	rt.client, err = discord.NewClient(cred, cc)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	var opts []discord.ServiceOption
	if cfg.Discord.LookupCache {
		opts = append(opts, discord.WithLookupCache(rt.store))
	}
	rt.service = discord.NewService(rt.client, discord.StaticTokens(cfg.Discord.UserTokens), opts...)
	return rt, nil
}

// Close releases the state store.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
