package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrCircuitOpen", ErrCircuitOpen},
		{"ErrMaxRetriesExceeded", ErrMaxRetriesExceeded},
		{"ErrTimeout", ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s has empty message", tt.name)
			}
		})
	}
}

func TestRetryAfterError(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := error(&RetryAfterError{Delay: 2 * time.Second, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("RetryAfterError should unwrap to its cause")
	}
	d, ok := retryAfter(err)
	if !ok || d != 2*time.Second {
		t.Errorf("retryAfter() = (%v, %v), want (2s, true)", d, ok)
	}
	if _, ok := retryAfter(cause); ok {
		t.Error("plain error should not carry a delay")
	}
	if (&RetryAfterError{Delay: time.Second}).Error() == "" {
		t.Error("RetryAfterError without cause should still describe itself")
	}
}
