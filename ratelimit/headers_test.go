package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestParseHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderLimit, "10")
	h.Set(HeaderRemaining, "3")
	h.Set(HeaderReset, "1470173023.123")
	h.Set(HeaderResetAfter, "1.5")
	h.Set(HeaderGlobal, "true")
	h.Set(HeaderBucket, "abcd1234")
	h.Set(HeaderScope, "shared")

	got := ParseHeaders(h)

	if got.Limit == nil || *got.Limit != 10 {
		t.Errorf("Limit = %v, want 10", got.Limit)
	}
	if got.Remaining == nil || *got.Remaining != 3 {
		t.Errorf("Remaining = %v, want 3", got.Remaining)
	}
	if got.ResetAt == nil || got.ResetAt.Unix() != 1470173023 {
		t.Errorf("ResetAt = %v, want unix 1470173023", got.ResetAt)
	}
	if d, ok := got.ResetAfterDuration(); !ok || d != 1500*time.Millisecond {
		t.Errorf("ResetAfterDuration() = (%v, %v), want (1.5s, true)", d, ok)
	}
	if !got.Global {
		t.Error("Global = false, want true")
	}
	if got.Bucket != "abcd1234" || got.Scope != "shared" {
		t.Errorf("Bucket/Scope = %q/%q", got.Bucket, got.Scope)
	}
	if !got.Present() {
		t.Error("Present() = false, want true")
	}
}

func TestParseHeaders_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric limit", HeaderLimit, "ten"},
		{"negative remaining", HeaderRemaining, "-1"},
		{"non-numeric reset-after", HeaderResetAfter, "soon"},
		{"infinite reset", HeaderReset, "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set(tt.key, tt.value)
			if got := ParseHeaders(h); got.Present() {
				t.Errorf("ParseHeaders(%s=%q) = %+v, want nothing", tt.key, tt.value, got)
			}
		})
	}
}

func TestParseHeaders_Nil(t *testing.T) {
	if ParseHeaders(nil).Present() {
		t.Error("nil header should parse to nothing")
	}
}
