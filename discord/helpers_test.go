package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testGuildID   = "111111111111111111"
	testUserID    = "222222222222222222"
	testRoleID    = "333333333333333333"
	testChannelID = "444444444444444444"
	testMessageID = "555555555555555555"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// newTestClient returns a bot client pointed at handler with pacing off
// and sleeps recorded.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newTestClientConfig(t, Config{BaseURL: srv.URL})
}

func newTestClientConfig(t *testing.T, cfg Config) (*Client, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	cfg.Sleep = rec.Sleep
	if cfg.GlobalRate == 0 {
		cfg.GlobalRate = -1
	}
	c, err := NewClient(BotToken("test-token"), cfg)
	require.NoError(t, err)
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
