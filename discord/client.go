package discord

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/discordops/cache"
	"github.com/jonwraymond/discordops/observe"
	"github.com/jonwraymond/discordops/ratelimit"
	"github.com/jonwraymond/discordops/resilience"
)

// DefaultBaseURL is the Discord REST API v10 root.
const DefaultBaseURL = "https://discord.com/api/v10"

// DefaultUserAgent follows Discord's required "DiscordBot (url, version)" form.
const DefaultUserAgent = "DiscordBot (https://github.com/jonwraymond/discordops, 1.0)"

// DefaultGlobalRate is Discord's global request cap per token.
const DefaultGlobalRate = 50

// Config configures a Client. Zero values take the defaults noted on each
// field.
type Config struct {
	// BaseURL is the API root. Default: DefaultBaseURL
	BaseURL string

	// UserAgent is sent on every request. Default: DefaultUserAgent
	UserAgent string

	// Timeout bounds each attempt. Default: 30s
	Timeout time.Duration

	// MaxRetries is the number of attempts per call. Default: 3
	MaxRetries int

	// RetryDelay is the linear backoff step after a transport failure.
	// Attempt n waits n*RetryDelay. Default: 1s
	RetryDelay time.Duration

	// HTTPClient issues requests. Default: a client without its own
	// timeout, since attempts are bounded by Timeout.
	HTTPClient *http.Client

	// Store backs the breaker and tracker when they are not supplied.
	// Default: an in-memory cache
	Store cache.Cache

	// Breaker and Tracker may be shared between clients and processes.
	// Defaults are built on Store; the default tracker reports 429s to
	// Breaker.
	Breaker *resilience.CircuitBreaker
	Tracker *ratelimit.Tracker

	// GlobalRate paces requests per second. Default: DefaultGlobalRate.
	// Negative disables pacing.
	GlobalRate float64

	// BreakOnTransportFailure records one breaker failure when transport
	// errors exhaust a call's retries. Default: false
	BreakOnTransportFailure bool

	// Sleep waits between attempts. Default: resilience.SleepContext
	Sleep func(ctx context.Context, d time.Duration) error

	// Logger receives one record per call. Default: no-op
	Logger observe.Logger

	// Middleware instruments every HTTP attempt. Optional.
	Middleware *observe.Middleware
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Middleware != nil {
		wrapped := *c.HTTPClient
		wrapped.Transport = c.Middleware.RoundTripper(c.HTTPClient.Transport)
		c.HTTPClient = &wrapped
	}
	if c.Store == nil {
		c.Store = cache.NewMemoryCache(cache.DefaultPolicy())
	}
	if c.Breaker == nil {
		c.Breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Store: c.Store})
	}
	if c.Tracker == nil {
		c.Tracker = ratelimit.NewTracker(ratelimit.Config{Store: c.Store, Breaker: c.Breaker})
	}
	if c.GlobalRate == 0 {
		c.GlobalRate = DefaultGlobalRate
	}
	if c.Sleep == nil {
		c.Sleep = resilience.SleepContext
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	return c
}

// Client is the Discord HTTP gateway. All calls are safe for concurrent use.
type Client struct {
	cred        Credential
	config      Config
	retryConfig resilience.RetryConfig
	limiter     *rate.Limiter

	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

// NewClient creates a client authenticated with cred.
func NewClient(cred Credential, config Config) (*Client, error) {
	if cred.IsZero() {
		return nil, ErrNoCredential
	}
	return newClient(cred, config.withDefaults()), nil
}

func newClient(cred Credential, config Config) *Client {
	c := &Client{
		cred:   cred,
		config: config,
		retryConfig: resilience.RetryConfig{
			MaxAttempts: config.MaxRetries,
			Backoff:     resilience.Linear(config.RetryDelay, 0),
			RetryIf:     retryable,
			Sleep:       config.Sleep,
		},
		flights: make(map[string]*flight),
	}
	if config.GlobalRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.GlobalRate), int(max(1, config.GlobalRate)))
	}
	return c
}

// ForUser returns a client that acts with a user's OAuth2 bearer token. It
// shares the breaker, tracker, transport and logger of c and paces its own
// requests.
func (c *Client) ForUser(token string) (*Client, error) {
	cred := BearerToken(token)
	if cred.IsZero() {
		return nil, ErrNoUserToken
	}
	return newClient(cred, c.config), nil
}

// Credential returns the client's credential.
func (c *Client) Credential() Credential { return c.cred }

// Breaker returns the circuit breaker consulted by every call.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.config.Breaker }

// Tracker returns the rate-limit tracker fed by every response.
func (c *Client) Tracker() *ratelimit.Tracker { return c.config.Tracker }

// RateLimitStats returns the current rate-limit snapshot.
func (c *Client) RateLimitStats(ctx context.Context) ratelimit.Snapshot {
	return c.config.Tracker.Snapshot(ctx)
}

// CurrentUser returns the user that owns the credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.Get(ctx, "/users/@me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUserGuilds lists the guilds the credential's user belongs to.
func (c *Client) CurrentUserGuilds(ctx context.Context) ([]PartialGuild, error) {
	var guilds []PartialGuild
	if err := c.Get(ctx, "/users/@me/guilds", &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// Guild returns a reference to a guild. The id is validated on use.
func (c *Client) Guild(id string) *GuildRef {
	return &GuildRef{client: c, id: id}
}

// Channel returns a reference to a channel. The id is validated on use.
func (c *Client) Channel(id string) *ChannelRef {
	return &ChannelRef{client: c, id: id}
}
