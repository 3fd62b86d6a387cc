package observe

import (
	"net/http"
	"time"
)

// Middleware instruments outbound Discord HTTP requests with tracing,
// metrics and logging.
//
// Contract:
//   - Concurrency: RoundTripper() returns a thread-safe transport.
//   - Context: the span is started from and propagated through the request context.
//   - Errors: transport errors are recorded and returned unchanged.
//   - Ownership: requests and responses pass through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// RoundTripper wraps next with instrumentation. A nil next uses
// http.DefaultTransport.
func (m *Middleware) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		ctx := req.Context()
		meta := CallMeta{
			Method:    req.Method,
			Route:     TemplateRoute(req.URL.Path),
			RequestID: RequestIDFromContext(ctx),
			Attempt:   AttemptFromContext(ctx),
		}

		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		resp, err := next.RoundTrip(req.WithContext(ctx))

		duration := time.Since(start)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordCall(ctx, meta, status, duration, err)

		log := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}
		switch {
		case err != nil:
			log.Error(ctx, "discord request failed", append(fields, Field{Key: "error", Value: err.Error()})...)
		case status == http.StatusTooManyRequests:
			log.Warn(ctx, "discord request rate limited", fields...)
		case status >= 400:
			log.Warn(ctx, "discord request rejected", fields...)
		default:
			log.Debug(ctx, "discord request completed", fields...)
		}

		return resp, err
	})
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
