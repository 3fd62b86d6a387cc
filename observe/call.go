package observe

import (
	"context"
	"regexp"
	"strings"
)

// CallMeta describes one outbound Discord API request for telemetry.
type CallMeta struct {
	Method    string // HTTP method (required)
	Route     string // Templated route, e.g. /guilds/{id}/bans/{id}
	RequestID string // Per-call correlation ID (optional)
	Attempt   int    // 1-based attempt number within a retry loop (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: discord.http <METHOD> <route>
func (m CallMeta) SpanName() string {
	return "discord.http " + strings.ToUpper(m.Method) + " " + m.Route
}

// Validate reports whether the metadata is usable.
func (m CallMeta) Validate() error {
	if m.Method == "" {
		return ErrMissingMethod
	}
	return nil
}

var (
	snowflakeSegment = regexp.MustCompile(`^[0-9]{17,19}$`)
	apiVersionPrefix = regexp.MustCompile(`^/api/v[0-9]+`)
)

// TemplateRoute turns a request path into a bounded-cardinality route:
// the /api/vN prefix is dropped, snowflake segments become {id}, and the
// segment after /reactions/ becomes {emoji}.
func TemplateRoute(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = apiVersionPrefix.ReplaceAllString(path, "")
	if path == "" {
		return "/"
	}

	segs := strings.Split(path, "/")
	for i, s := range segs {
		switch {
		case snowflakeSegment.MatchString(s):
			segs[i] = "{id}"
		case i > 0 && segs[i-1] == "reactions" && s != "":
			segs[i] = "{emoji}"
		}
	}
	return strings.Join(segs, "/")
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the call's request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type attemptKey struct{}

// WithAttempt returns a context carrying the retry attempt number.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// AttemptFromContext returns the attempt number stored in ctx, or 0.
func AttemptFromContext(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}
