// Package health reports the state of the Discord client's shared
// resilience machinery.
//
// BreakerChecker maps the circuit breaker onto a Status: closed is healthy,
// half-open is degraded and open is unhealthy. RateLimitChecker degrades
// while a rate-limit window is exhausted or the error rate is high.
// StoreChecker probes the shared state store.
//
// Checks are combined with an Aggregator and exposed over HTTP:
//
//	agg := health.NewAggregator(health.AggregatorConfig{},
//		health.NewBreakerChecker(client.Breaker()),
//		health.NewRateLimitChecker(client.Tracker(), health.RateLimitCheckerConfig{}),
//	)
//
//	r := chi.NewRouter()
//	health.RegisterHandlers(r, agg)
//	r.Handle("/ratelimit", health.RateLimitHandler(client.Tracker()))
//
// /healthz is a liveness probe, /readyz a readiness probe (503 only when
// unhealthy) and /health returns every check as JSON.
package health
