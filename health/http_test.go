package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/discordops/ratelimit"
	"github.com/jonwraymond/discordops/resilience"
)

func serve(h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	rec := serve(LivenessHandler(), "/healthz")

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %q, want OK", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "healthy"},
		{"degraded still serves", Degraded("slow"), http.StatusOK, "degraded"},
		{"unhealthy", Unhealthy("down", nil), http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(AggregatorConfig{}, fixed("only", tt.result))
			rec := serve(ReadinessHandler(agg), "/readyz")

			if rec.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

type checkJSON struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
	Error   string         `json:"error"`
}

func TestReportHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{},
		fixed("breaker", Degraded("half-open").WithDetails(map[string]any{"failures": 2})),
		fixed("store", Unhealthy("unreachable", errors.New("redis down"))),
	)
	rec := serve(ReportHandler(agg), "/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Status    string               `json:"status"`
		CheckedAt string               `json:"checked_at"`
		Checks    map[string]checkJSON `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", body.Status)
	}
	if body.CheckedAt == "" {
		t.Error("checked_at missing")
	}
	if c := body.Checks["store"]; c.Status != "unhealthy" || c.Error != "redis down" || c.Message != "unreachable" {
		t.Errorf("store = %+v", c)
	}
	if c := body.Checks["breaker"]; c.Status != "degraded" || c.Details["failures"] != float64(2) || c.Error != "" {
		t.Errorf("breaker = %+v", c)
	}
}

func TestCheckHandler(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{},
		fixed("breaker", Degraded("half-open")),
		fixed("store", Unhealthy("unreachable", errors.New("redis down"))),
	)

	tests := []struct {
		name       string
		check      string
		wantCode   int
		wantStatus string
	}{
		{"degraded", "breaker", http.StatusOK, "degraded"},
		{"unhealthy", "store", http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(CheckHandler(agg, tt.check), "/health/"+tt.check)
			if rec.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body checkJSON
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		rec := serve(CheckHandler(agg, "nope"), "/health/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["error"] == "" {
			t.Errorf("body = %v, want an error", body)
		}
	})
}

func TestRateLimitHandler(t *testing.T) {
	ctx := context.Background()
	tracker := ratelimit.NewTracker(ratelimit.Config{})
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "10")
	h.Set("X-RateLimit-Remaining", "4")
	tracker.RecordResponse(ctx, h, false, http.StatusOK)

	rec := serve(RateLimitHandler(tracker), "/ratelimit")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	var body struct {
		Blocked bool `json:"blocked"`
		Stats   struct {
			TotalRequests  int64   `json:"total_requests"`
			Limit          int     `json:"limit"`
			Remaining      int     `json:"remaining"`
			UsedPercentage float64 `json:"used_percentage"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Blocked {
		t.Error("Blocked = true, want false")
	}
	if body.Stats.TotalRequests != 1 || body.Stats.Limit != 10 || body.Stats.Remaining != 4 {
		t.Errorf("Stats = %+v", body.Stats)
	}
	if body.Stats.UsedPercentage != 60 {
		t.Errorf("UsedPercentage = %v, want 60", body.Stats.UsedPercentage)
	}
}

func TestRateLimitHandler_Blocked(t *testing.T) {
	ctx := context.Background()
	tracker := ratelimit.NewTracker(ratelimit.Config{})
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "5")
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset-After", "30")
	tracker.RecordResponse(ctx, h, false, http.StatusOK)

	rec := serve(RateLimitHandler(tracker), "/ratelimit")
	var body struct {
		Blocked bool `json:"blocked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Blocked {
		t.Error("Blocked = false, want true")
	}
}

func TestBreakerHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("closed", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
		cb.RecordFailure(ctx)

		var body map[string]any
		if err := json.Unmarshal(serve(BreakerHandler(cb), "/breaker").Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["state"] != "closed" || body["failures"] != float64(1) {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["last_failure"]; !ok {
			t.Error("last_failure missing after a failure")
		}
		if _, ok := body["open_until"]; ok {
			t.Error("open_until present for a closed circuit")
		}
	})

	t.Run("open", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{MaxFailures: 1})
		cb.RecordFailure(ctx)

		var body map[string]any
		if err := json.Unmarshal(serve(BreakerHandler(cb), "/breaker").Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["state"] != "open" || body["max_failures"] != float64(1) {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["open_until"]; !ok {
			t.Error("open_until missing for an open circuit")
		}
	})
}

func TestRegisterHandlers_Chi(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{}, NewBreakerChecker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})))

	r := chi.NewRouter()
	RegisterHandlers(r, agg)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s Status = %d, want 200", path, rec.Code)
		}
	}
}
