package observe

import (
	"context"
	"testing"
)

func TestTemplateRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v10/guilds/112233445566778899/bans/998877665544332211", "/guilds/{id}/bans/{id}"},
		{"/api/v10/users/@me/guilds", "/users/@me/guilds"},
		{"/api/v10/channels/12345678901234567/messages/12345678901234567/reactions/%F0%9F%91%8D/@me",
			"/channels/{id}/messages/{id}/reactions/{emoji}/@me"},
		{"/guilds/1234", "/guilds/1234"},
		{"/api/v10/guilds/112233445566778899/members?limit=10", "/guilds/{id}/members"},
		{"/api/v10", "/"},
	}

	for _, tt := range tests {
		if got := TemplateRoute(tt.path); got != tt.want {
			t.Errorf("TemplateRoute(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCallMeta_SpanName(t *testing.T) {
	meta := CallMeta{Method: "put", Route: "/guilds/{id}/bans/{id}"}
	if got := meta.SpanName(); got != "discord.http PUT /guilds/{id}/bans/{id}" {
		t.Errorf("SpanName() = %q", got)
	}
	if err := meta.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := (CallMeta{}).Validate(); err != ErrMissingMethod {
		t.Errorf("Validate() error = %v, want ErrMissingMethod", err)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" {
		t.Error("empty context should carry no request id")
	}
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithAttempt(ctx, 2)
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
	if got := AttemptFromContext(ctx); got != 2 {
		t.Errorf("AttemptFromContext() = %d, want 2", got)
	}
}
