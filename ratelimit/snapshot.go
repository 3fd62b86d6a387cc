package ratelimit

import (
	"encoding/json"
	"time"
)

// Snapshot is the persisted rate-limit record plus its derived ratios.
type Snapshot struct {
	TotalRequests    int64 `json:"total_requests"`
	ErrorCount       int64 `json:"error_count"`
	RateLimitedCount int64 `json:"rate_limited_count"`

	Limit      *int       `json:"limit"`
	Remaining  *int       `json:"remaining"`
	ResetAt    *time.Time `json:"reset_at"`
	ResetAfter *float64   `json:"reset_after"`
	IsGlobal   bool       `json:"is_global"`
	Bucket     string     `json:"bucket,omitempty"`
	Scope      string     `json:"scope,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// UsedPercentage is the share of the current window already spent, or 0
// when the limit is unknown.
func (s Snapshot) UsedPercentage() float64 {
	if s.Limit == nil || s.Remaining == nil || *s.Limit <= 0 {
		return 0
	}
	return float64(*s.Limit-*s.Remaining) / float64(*s.Limit) * 100
}

// ErrorPercentage is the share of requests that failed, or 0 before any
// request was recorded.
func (s Snapshot) ErrorPercentage() float64 {
	if s.TotalRequests <= 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.TotalRequests) * 100
}

// MarshalJSON includes the derived percentages.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		UsedPercentage  float64 `json:"used_percentage"`
		ErrorPercentage float64 `json:"error_percentage"`
	}{plain(s), s.UsedPercentage(), s.ErrorPercentage()})
}

// apply copies the headers that are present onto s.
func (s *Snapshot) apply(h Headers) {
	if h.Limit != nil {
		s.Limit = h.Limit
	}
	if h.Remaining != nil {
		s.Remaining = h.Remaining
	}
	if h.ResetAt != nil {
		s.ResetAt = h.ResetAt
	}
	if h.ResetAfter != nil {
		s.ResetAfter = h.ResetAfter
	}
	if h.Present() {
		s.IsGlobal = h.Global
	}
	if h.Bucket != "" {
		s.Bucket = h.Bucket
	}
	if h.Scope != "" {
		s.Scope = h.Scope
	}
	if s.Limit != nil && s.Remaining != nil && *s.Remaining > *s.Limit {
		clamped := *s.Limit
		s.Remaining = &clamped
	}
}
