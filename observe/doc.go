// Package observe provides observability primitives for Discord API calls.
//
// It wires OpenTelemetry tracing and metrics with a zap-backed structured
// logger, and exposes an http.RoundTripper middleware that instruments each
// outbound request. Routes are templated so snowflake IDs do not inflate
// metric cardinality.
package observe
