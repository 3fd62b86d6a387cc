package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0 and 1")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")

	// ErrNilObserver is returned by MiddlewareFromObserver for a nil
	// Observer.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingMethod is returned by CallMeta.Validate.
	ErrMissingMethod = errors.New("observe: call method is required")
)
