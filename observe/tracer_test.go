package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer() (*tracerImpl, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &tracerImpl{tracer: tp.Tracer("test")}, recorder
}

func attrMap(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	m := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()
	meta := CallMeta{
		Method:    "PUT",
		Route:     "/guilds/{id}/bans/{id}",
		RequestID: "req-7",
		Attempt:   1,
	}

	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, 204, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]

	if s.Name() != "discord.http PUT /guilds/{id}/bans/{id}" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", s.SpanKind())
	}

	attrs := attrMap(s)
	if v := attrs["http.request.method"]; v.AsString() != "PUT" {
		t.Errorf("http.request.method = %v", v.AsString())
	}
	if v := attrs["discord.request_id"]; v.AsString() != "req-7" {
		t.Errorf("discord.request_id = %v", v.AsString())
	}
	if v := attrs["http.response.status_code"]; v.AsInt64() != 204 {
		t.Errorf("http.response.status_code = %v", v.AsInt64())
	}
}

func TestTracer_OptionalAttributesOmitted(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), CallMeta{Method: "GET", Route: "/users/@me"})
	tr.EndSpan(span, 200, nil)

	attrs := attrMap(recorder.Ended()[0])
	if _, ok := attrs["discord.request_id"]; ok {
		t.Error("request id attribute should be absent")
	}
	if _, ok := attrs["discord.attempt"]; ok {
		t.Error("attempt attribute should be absent")
	}
}

func TestTracer_ContextPropagation(t *testing.T) {
	tr, recorder := newRecordingTracer()

	parentCtx, parent := tr.tracer.Start(context.Background(), "service.call")
	ctx, span := tr.StartSpan(parentCtx, CallMeta{Method: "GET", Route: "/guilds/{id}"})
	if !trace.SpanContextFromContext(ctx).IsValid() {
		t.Fatal("returned context carries no span")
	}
	tr.EndSpan(span, 200, nil)
	parent.End()

	var child sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() != "service.call" {
			child = s
		}
	}
	if child == nil || child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("call span should be a child of the caller's span")
	}
}

func TestTracer_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   codes.Code
	}{
		{"success", 200, nil, codes.Unset},
		{"client error", 404, nil, codes.Unset},
		{"rate limited", 429, nil, codes.Unset},
		{"server error", 502, nil, codes.Error},
		{"transport error", 0, errors.New("timeout"), codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, recorder := newRecordingTracer()
			_, span := tr.StartSpan(context.Background(), CallMeta{Method: "GET", Route: "/x"})
			tr.EndSpan(span, tt.status, tt.err)

			if got := recorder.Ended()[0].Status().Code; got != tt.want {
				t.Errorf("status code = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTracer_RateLimitedAttribute(t *testing.T) {
	tr, recorder := newRecordingTracer()
	_, span := tr.StartSpan(context.Background(), CallMeta{Method: "POST", Route: "/channels/{id}/messages"})
	tr.EndSpan(span, 429, nil)

	if v, ok := attrMap(recorder.Ended()[0])["discord.rate_limited"]; !ok || !v.AsBool() {
		t.Error("expected discord.rate_limited=true")
	}
}
