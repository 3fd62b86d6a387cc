package observe

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricRequests    = "discord.http.requests"
	MetricErrors      = "discord.http.errors"
	MetricRateLimited = "discord.http.rate_limited"
	MetricDuration    = "discord.http.duration_ms"
)

// Metrics records Discord call metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one HTTP attempt. statusCode is 0 on transport error.
	RecordCall(ctx context.Context, meta CallMeta, statusCode int, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	requests     metric.Int64Counter
	errors       metric.Int64Counter
	rateLimited  metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	requests, err := meter.Int64Counter(
		MetricRequests,
		metric.WithDescription("Total number of Discord API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(
		MetricErrors,
		metric.WithDescription("Discord API requests that failed or returned non-2xx"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	rateLimited, err := meter.Int64Counter(
		MetricRateLimited,
		metric.WithDescription("Discord API responses with status 429"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricDuration,
		metric.WithDescription("Discord API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		requests:     requests,
		errors:       errs,
		rateLimited:  rateLimited,
		durationHist: durationHist,
	}, nil
}

// RecordCall records metrics for one attempt.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, statusCode int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("http.route", meta.Route),
		attribute.String("http.response.status_class", statusClass(statusCode)),
	}
	opt := metric.WithAttributes(attrs...)

	m.requests.Add(ctx, 1, opt)

	if err != nil || statusCode < 200 || statusCode >= 300 {
		m.errors.Add(ctx, 1, opt)
	}
	if statusCode == http.StatusTooManyRequests {
		m.rateLimited.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// statusClass buckets a status code as "2xx", "4xx" and so on, or "error"
// when no response was received.
func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, statusCode int, duration time.Duration, err error) {
}
