package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Router is the subset of http.ServeMux and chi.Router used to mount
// handlers.
type Router interface {
	Handle(pattern string, h http.Handler)
}

// LivenessHandler always answers 200 while the process serves.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler answers 503 only when the aggregate is unhealthy. The
// body is the status word.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.RunAll(r.Context())
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(httpStatus(report.Status))
		_, _ = w.Write([]byte(report.Status.String()))
	}
}

type checkBody struct {
	Status     Status         `json:"status"`
	Message    string         `json:"message,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Details    map[string]any `json:"details,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func newCheckBody(r Result) checkBody {
	b := checkBody{
		Status:     r.Status,
		Message:    r.Message,
		DurationMS: r.Duration.Milliseconds(),
		Details:    r.Details,
	}
	if r.Err != nil {
		b.Error = r.Err.Error()
	}
	return b
}

// ReportHandler serves the full report as JSON.
func ReportHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.RunAll(r.Context())
		checks := make(map[string]checkBody, len(report.Results))
		for name, res := range report.Results {
			checks[name] = newCheckBody(res)
		}
		writeJSON(w, httpStatus(report.Status), struct {
			Status    Status               `json:"status"`
			CheckedAt time.Time            `json:"checked_at"`
			Checks    map[string]checkBody `json:"checks"`
		}{report.Status, report.CheckedAt.UTC(), checks})
	}
}

// CheckHandler serves the check called name, or 404 if there is none.
func CheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := agg.Run(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, httpStatus(res.Status), newCheckBody(res))
	}
}

// RateLimitHandler serves the current rate-limit snapshot, including the
// derived percentages, and whether calls are blocked.
func RateLimitHandler(source RateLimitSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		writeJSON(w, http.StatusOK, struct {
			Blocked bool `json:"blocked"`
			Stats   any  `json:"stats"`
		}{
			Blocked: source.ShouldBlock(ctx),
			Stats:   source.Snapshot(ctx),
		})
	}
}

// BreakerHandler serves circuit breaker statistics.
func BreakerHandler(source BreakerSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := source.Metrics(r.Context())
		resp := map[string]any{
			"state":        m.State.String(),
			"failures":     m.Failures,
			"max_failures": m.MaxFailures,
		}
		if !m.LastFailure.IsZero() {
			resp["last_failure"] = m.LastFailure.UTC().Format(time.RFC3339)
		}
		if !m.OpenUntil.IsZero() {
			resp["open_until"] = m.OpenUntil.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RegisterHandlers mounts /healthz, /readyz and /health on r.
func RegisterHandlers(r Router, agg *Aggregator) {
	r.Handle("/healthz", LivenessHandler())
	r.Handle("/readyz", ReadinessHandler(agg))
	r.Handle("/health", ReportHandler(agg))
}

func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
