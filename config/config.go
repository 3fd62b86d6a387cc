package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/discordops/discord"
	"github.com/jonwraymond/discordops/observe"
)

// Config is the full discordops configuration.
type Config struct {
	Discord DiscordConfig `mapstructure:"discord"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Observe ObserveConfig `mapstructure:"observe"`
	Server  ServerConfig  `mapstructure:"server"`
	Secrets SecretsConfig `mapstructure:"secrets"`
}

// DiscordConfig configures the REST client.
type DiscordConfig struct {
	Token      string        `mapstructure:"token"`
	BaseURL    string        `mapstructure:"base_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	GlobalRate float64       `mapstructure:"global_rate"`

	// LookupCache enables caching of role and channel lists.
	LookupCache bool `mapstructure:"lookup_cache"`

	// UserTokens maps user ids to OAuth2 bearer tokens.
	UserTokens map[string]string `mapstructure:"user_tokens"`
}

// BreakerConfig configures the shared circuit breaker.
type BreakerConfig struct {
	MaxFailures             int           `mapstructure:"max_failures"`
	ResetTimeout            time.Duration `mapstructure:"reset_timeout"`
	ReopenOnHalfOpenFailure bool          `mapstructure:"reopen_on_half_open_failure"`
	TripOnTransportFailure  bool          `mapstructure:"trip_on_transport_failure"`
}

// RedisConfig selects the shared state store. An empty Addr keeps state
// in process memory.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// ObserveConfig configures logging, tracing and metrics.
type ObserveConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	LogLevel    string  `mapstructure:"log_level"`
	Tracing     bool    `mapstructure:"tracing"`
	TraceExport string  `mapstructure:"trace_exporter"`
	SamplePct   float64 `mapstructure:"sample_pct"`
	Metrics     bool    `mapstructure:"metrics"`
	MetricsExp  string  `mapstructure:"metrics_exporter"`
}

// ServerConfig configures the ops HTTP surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTIssuer       string        `mapstructure:"jwt_issuer"`
	APIKeys         []APIKey      `mapstructure:"api_keys"`

	// HealthErrorThreshold is the error percentage above which the
	// rate-limit check reports degraded.
	HealthErrorThreshold float64 `mapstructure:"health_error_threshold"`
}

// APIKey grants a principal access to the ops surface.
type APIKey struct {
	ID        string   `mapstructure:"id"`
	Key       string   `mapstructure:"key"`
	Principal string   `mapstructure:"principal"`
	Roles     []string `mapstructure:"roles"`
}

// SecretsConfig configures secretref resolution.
type SecretsConfig struct {
	// Dir is the directory read by the "file" provider.
	Dir string `mapstructure:"dir"`
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("%w: discord.max_retries must be at least 1", ErrInvalid))
	}
	if c.Discord.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: discord.timeout must be positive", ErrInvalid))
	}
	if c.Breaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("%w: breaker.max_failures must be at least 1", ErrInvalid))
	}
	oc := c.ObserveSettings()
	if err := oc.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	for i, k := range c.Server.APIKeys {
		if k.Key == "" || k.Principal == "" {
			errs = append(errs, fmt.Errorf("%w: server.api_keys[%d] needs key and principal", ErrInvalid, i))
		}
	}
	return errors.Join(errs...)
}

// ClientConfig returns the discord.Client settings. Store, breaker,
// tracker and instrumentation are wired by the caller.
func (c *Config) ClientConfig() discord.Config {
	return discord.Config{
		BaseURL:    c.Discord.BaseURL,
		UserAgent:  c.Discord.UserAgent,
		Timeout:    c.Discord.Timeout,
		MaxRetries: c.Discord.MaxRetries,
		RetryDelay: c.Discord.RetryDelay,
		GlobalRate: c.Discord.GlobalRate,

		BreakOnTransportFailure: c.Breaker.TripOnTransportFailure,
	}
}

// ObserveSettings returns the observe.Config for this configuration.
func (c *Config) ObserveSettings() observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing,
			Exporter:  c.Observe.TraceExport,
			SamplePct: c.Observe.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics,
			Exporter: c.Observe.MetricsExp,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.LogLevel,
		},
	}
}
