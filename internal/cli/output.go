package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonwraymond/discordops/discord"
	"github.com/jonwraymond/discordops/ratelimit"
	"github.com/jonwraymond/discordops/resilience"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// stats is the combined view printed by the stats command.
type stats struct {
	Blocked   bool               `json:"blocked"`
	RateLimit ratelimit.Snapshot `json:"rate_limit"`
	Breaker   breakerView        `json:"breaker"`
}

type breakerView struct {
	State       string     `json:"state"`
	Failures    int        `json:"failures"`
	MaxFailures int        `json:"max_failures"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
	OpenUntil   *time.Time `json:"open_until,omitempty"`
}

func newBreakerView(m resilience.CircuitBreakerMetrics) breakerView {
	v := breakerView{State: m.State.String(), Failures: m.Failures, MaxFailures: m.MaxFailures}
	if !m.LastFailure.IsZero() {
		v.LastFailure = &m.LastFailure
	}
	if !m.OpenUntil.IsZero() {
		v.OpenUntil = &m.OpenUntil
	}
	return v
}

func renderStats(w io.Writer, s stats) {
	t := newTable(w)
	t.SetTitle("Discord API state")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Circuit", s.Breaker.State},
		{"Consecutive failures", fmt.Sprintf("%d/%d", s.Breaker.Failures, s.Breaker.MaxFailures)},
		{"Blocked", s.Blocked},
		{"Requests", s.RateLimit.TotalRequests},
		{"Errors", fmt.Sprintf("%d (%.1f%%)", s.RateLimit.ErrorCount, s.RateLimit.ErrorPercentage())},
		{"Rate limited", s.RateLimit.RateLimitedCount},
		{"Limit", optInt(s.RateLimit.Limit)},
		{"Remaining", optInt(s.RateLimit.Remaining)},
		{"Used", fmt.Sprintf("%.1f%%", s.RateLimit.UsedPercentage())},
		{"Bucket", dash(s.RateLimit.Bucket)},
	})
	if s.RateLimit.ResetAt != nil {
		t.AppendRow(table.Row{"Resets at", s.RateLimit.ResetAt.UTC().Format(time.RFC3339)})
	}
	if s.Breaker.OpenUntil != nil {
		t.AppendRow(table.Row{"Open until", s.Breaker.OpenUntil.UTC().Format(time.RFC3339)})
	}
	t.Render()
}

func renderGuilds(w io.Writer, guilds []discord.PartialGuild) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Owner", "Admin"})
	for _, g := range guilds {
		t.AppendRow(table.Row{g.ID, g.Name, g.Owner, g.Permissions.Has(discord.PermAdministrator)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d guilds", len(guilds)), "", ""})
	t.Render()
}

func renderUser(w io.Writer, u *discord.User) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Username", "Bot", "Created"})
	created := "-"
	if ts, err := discord.SnowflakeTime(u.ID); err == nil {
		created = ts.UTC().Format(time.RFC3339)
	}
	t.AppendRow(table.Row{u.ID, u.Username, u.Bot, created})
	t.Render()
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
