package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// sumOf totals every data point of an int64 counter, or -1 if absent.
func sumOf(rm metricdata.ResourceMetrics, name string) int64 {
	m := findMetric(rm, name)
	if m == nil {
		return -1
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return -1
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordCall(t *testing.T) {
	meta := CallMeta{Method: "GET", Route: "/guilds/{id}"}

	tests := []struct {
		name            string
		status          int
		err             error
		wantErrors      int64
		wantRateLimited int64
	}{
		{"success", 200, nil, 0, 0},
		{"no content", 204, nil, 0, 0},
		{"forbidden", 403, nil, 1, 0},
		{"rate limited", 429, nil, 1, 1},
		{"transport error", 0, errors.New("dial tcp: refused"), 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t)
			m.RecordCall(context.Background(), meta, tt.status, 25*time.Millisecond, tt.err)

			rm := collect(t, reader)
			if got := sumOf(rm, MetricRequests); got != 1 {
				t.Errorf("%s = %d, want 1", MetricRequests, got)
			}
			if got := max(sumOf(rm, MetricErrors), 0); got != tt.wantErrors {
				t.Errorf("%s = %d, want %d", MetricErrors, got, tt.wantErrors)
			}
			if got := max(sumOf(rm, MetricRateLimited), 0); got != tt.wantRateLimited {
				t.Errorf("%s = %d, want %d", MetricRateLimited, got, tt.wantRateLimited)
			}
		})
	}
}

func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), CallMeta{Method: "GET", Route: "/users/@me"}, 200, 150*time.Millisecond, nil)

	found := findMetric(collect(t, reader), MetricDuration)
	if found == nil {
		t.Fatalf("%s metric not found", MetricDuration)
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 150 {
		t.Errorf("histogram = %+v, want one point summing to 150", hist.DataPoints)
	}
}

func TestMetrics_LabelsApplied(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), CallMeta{Method: "DELETE", Route: "/guilds/{id}/members/{id}"}, 404, time.Millisecond, nil)

	found := findMetric(collect(t, reader), MetricRequests)
	sum := found.Data.(metricdata.Sum[int64])
	attrs := sum.DataPoints[0].Attributes

	want := map[string]string{
		"http.request.method":        "DELETE",
		"http.route":                 "/guilds/{id}/members/{id}",
		"http.response.status_class": "4xx",
	}
	for k, v := range want {
		got, ok := attrs.Value(attribute.Key(k))
		if !ok || got.AsString() != v {
			t.Errorf("attribute %s = %v, want %s", k, got.AsString(), v)
		}
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := CallMeta{Method: "GET", Route: "/users/@me"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordCall(context.Background(), meta, 200, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if got := sumOf(collect(t, reader), MetricRequests); got != 50 {
		t.Errorf("%s = %d, want 50", MetricRequests, got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{0: "error", 200: "2xx", 204: "2xx", 429: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
