package exporters

import (
	"bytes"
	"context"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
)

func TestTracingExporter(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		env      map[string]string
		wantErr  string
		wantNil  bool
	}{
		{name: "stdout", exporter: "stdout"},
		{name: "none", exporter: "none", wantNil: true},
		{name: "empty", exporter: "", wantNil: true},
		{name: "invalid", exporter: "zipkin", wantErr: "unknown exporter"},
		{name: "otlp missing endpoint", exporter: "otlp", wantErr: "endpoint"},
		{name: "otlp with endpoint", exporter: "otlp", env: map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "http://localhost:4317"}},
		{name: "jaeger missing endpoint", exporter: "jaeger", wantErr: "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
			t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
			t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			exp, err := NewTracingExporter(context.Background(), tt.exporter, WithWriter(&bytes.Buffer{}))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (exp == nil) != tt.wantNil {
				t.Errorf("exporter nil = %v, want %v", exp == nil, tt.wantNil)
			}
		})
	}
}

func TestMetricsReader(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  string
		wantNil  bool
	}{
		{name: "stdout", exporter: "stdout"},
		{name: "prometheus", exporter: "prometheus"},
		{name: "none", exporter: "none", wantNil: true},
		{name: "invalid", exporter: "statsd", wantErr: "unknown"},
		{name: "otlp missing endpoint", exporter: "otlp", wantErr: "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
			t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

			reader, err := NewMetricsReader(context.Background(), tt.exporter,
				WithWriter(&bytes.Buffer{}),
				WithRegisterer(promclient.NewRegistry()),
			)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (reader == nil) != tt.wantNil {
				t.Errorf("reader nil = %v, want %v", reader == nil, tt.wantNil)
			}
		})
	}
}
