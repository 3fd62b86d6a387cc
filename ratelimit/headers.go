package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Discord rate-limit response headers.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderResetAfter = "X-RateLimit-Reset-After"
	HeaderGlobal     = "X-RateLimit-Global"
	HeaderBucket     = "X-RateLimit-Bucket"
	HeaderScope      = "X-RateLimit-Scope"
)

// Headers is the parsed set of rate-limit headers on one response. A nil
// field means the header was absent or malformed.
type Headers struct {
	Limit      *int
	Remaining  *int
	ResetAt    *time.Time
	ResetAfter *float64
	Global     bool
	Bucket     string
	Scope      string
}

// ParseHeaders extracts the rate-limit headers from h.
func ParseHeaders(h http.Header) Headers {
	var out Headers
	if h == nil {
		return out
	}

	out.Limit = parseInt(h.Get(HeaderLimit))
	out.Remaining = parseInt(h.Get(HeaderRemaining))
	out.ResetAfter = parseFloat(h.Get(HeaderResetAfter))
	if epoch := parseFloat(h.Get(HeaderReset)); epoch != nil {
		sec, frac := math.Modf(*epoch)
		t := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
		out.ResetAt = &t
	}
	out.Global = strings.EqualFold(strings.TrimSpace(h.Get(HeaderGlobal)), "true")
	out.Bucket = strings.TrimSpace(h.Get(HeaderBucket))
	out.Scope = strings.TrimSpace(h.Get(HeaderScope))

	return out
}

// Present reports whether any rate-limit header was found.
func (h Headers) Present() bool {
	return h.Limit != nil || h.Remaining != nil || h.ResetAt != nil ||
		h.ResetAfter != nil || h.Global || h.Bucket != "" || h.Scope != ""
}

// ResetAfterDuration converts ResetAfter seconds to a duration.
func (h Headers) ResetAfterDuration() (time.Duration, bool) {
	if h.ResetAfter == nil || *h.ResetAfter <= 0 {
		return 0, false
	}
	return time.Duration(*h.ResetAfter * float64(time.Second)), true
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
