package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/discordops/resilience"
)

// Sentinel errors for Discord calls.
var (
	// ErrCircuitOpen is returned without I/O while the breaker is open.
	ErrCircuitOpen = resilience.ErrCircuitOpen

	// ErrMaxRetriesExceeded is returned when every attempt failed.
	ErrMaxRetriesExceeded = resilience.ErrMaxRetriesExceeded

	// ErrRateLimited is returned without I/O while a previous response's
	// zero-remaining window is still open.
	ErrRateLimited = errors.New("discord: rate limited")

	// ErrInvalidID is returned when a snowflake argument is malformed.
	ErrInvalidID = errors.New("discord: invalid snowflake id")

	// ErrNoCredential is returned when a client is built without a token.
	ErrNoCredential = errors.New("discord: credential is required")

	// ErrNoUserToken is returned when no bearer token is known for a user.
	ErrNoUserToken = errors.New("discord: no user token")
)

// APIError is a non-2xx response from Discord.
type APIError struct {
	StatusCode int
	// Code and Message come from Discord's JSON error body when present.
	Code     int
	Message  string
	Method   string
	Endpoint string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != 0 {
		return fmt.Sprintf("discord: %s %s: %d %s (code %d)", e.Method, e.Endpoint, e.StatusCode, msg, e.Code)
	}
	return fmt.Sprintf("discord: %s %s: %d %s", e.Method, e.Endpoint, e.StatusCode, msg)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from Discord.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsForbidden reports whether err is a 403 from Discord.
func IsForbidden(err error) bool { return StatusCode(err) == http.StatusForbidden }

// isDefinitive reports whether err is a final answer from Discord rather
// than an infrastructure failure. Exhausted 429 retries are not definitive.
func isDefinitive(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && !errors.Is(err, ErrMaxRetriesExceeded)
}
