package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jonwraymond/discordops/auth"
	"github.com/jonwraymond/discordops/discord"
	"github.com/jonwraymond/discordops/secret"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DISCORDOPS"

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrNoToken is returned by Credential when no bot token is set.
	ErrNoToken = errors.New("config: discord.token is required")
)

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to apply on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.base_url", discord.DefaultBaseURL)
	v.SetDefault("discord.user_agent", discord.DefaultUserAgent)
	v.SetDefault("discord.timeout", 30*time.Second)
	v.SetDefault("discord.max_retries", 3)
	v.SetDefault("discord.retry_delay", time.Second)
	v.SetDefault("discord.global_rate", discord.DefaultGlobalRate)
	v.SetDefault("discord.lookup_cache", false)

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.reset_timeout", time.Minute)
	v.SetDefault("breaker.reopen_on_half_open_failure", false)
	v.SetDefault("breaker.trip_on_transport_failure", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 5*time.Second)

	v.SetDefault("observe.service_name", "discordops")
	v.SetDefault("observe.log_level", "info")
	v.SetDefault("observe.tracing", false)
	v.SetDefault("observe.trace_exporter", "none")
	v.SetDefault("observe.sample_pct", 1.0)
	v.SetDefault("observe.metrics", true)
	v.SetDefault("observe.metrics_exporter", "prometheus")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_issuer", "discordops")
	v.SetDefault("server.health_error_threshold", 25.0)

	v.SetDefault("secrets.dir", "")
}

// Load reads configuration from defaults, the YAML file at path (skipped
// when empty) and the environment, then resolves secret references.
func Load(ctx context.Context, path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(ctx, v)
}

// FromViper decodes an already populated viper instance.
func FromViper(ctx context.Context, v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.resolveSecrets(ctx); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	res := secret.NewResolver(secret.NewEnvProvider(), secret.NewFileProvider(c.Secrets.Dir))

	var err error
	if strings.TrimSpace(c.Discord.Token) != "" {
		if c.Discord.Token, err = res.Token(ctx, c.Discord.Token); err != nil {
			return fmt.Errorf("config: discord.token: %w", err)
		}
	}
	if c.Discord.UserTokens, err = res.ResolveMap(ctx, c.Discord.UserTokens); err != nil {
		return fmt.Errorf("config: discord.user_tokens: %w", err)
	}
	if c.Redis.Password, err = res.Resolve(ctx, c.Redis.Password); err != nil {
		return fmt.Errorf("config: redis.password: %w", err)
	}
	if c.Server.JWTSecret, err = res.Resolve(ctx, c.Server.JWTSecret); err != nil {
		return fmt.Errorf("config: server.jwt_secret: %w", err)
	}
	for i := range c.Server.APIKeys {
		if c.Server.APIKeys[i].Key, err = res.Resolve(ctx, c.Server.APIKeys[i].Key); err != nil {
			return fmt.Errorf("config: server.api_keys[%d]: %w", i, err)
		}
	}
	return nil
}

// Credential returns the bot credential.
func (c *Config) Credential() (discord.Credential, error) {
	if c.Discord.Token == "" {
		return discord.Credential{}, ErrNoToken
	}
	return discord.BotToken(c.Discord.Token), nil
}

// APIKeyStore returns an in-memory store holding the configured ops keys.
func (c *Config) APIKeyStore() *auth.MemoryAPIKeyStore {
	store := auth.NewMemoryAPIKeyStore()
	for _, k := range c.Server.APIKeys {
		id := k.ID
		if id == "" {
			id = k.Principal
		}
		store.AddKey(id, k.Key, k.Principal, k.Roles...)
	}
	return store
}
