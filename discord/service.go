package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonwraymond/discordops/cache"
	"github.com/jonwraymond/discordops/ratelimit"
)

// UserTokenProvider supplies OAuth2 bearer tokens for users. Token
// storage and refresh live outside this package.
type UserTokenProvider interface {
	UserToken(ctx context.Context, userID string) (string, error)
}

// StaticTokens is a UserTokenProvider backed by a map of user id to token.
type StaticTokens map[string]string

// UserToken implements UserTokenProvider.
func (s StaticTokens) UserToken(_ context.Context, userID string) (string, error) {
	if tok, ok := s[userID]; ok && tok != "" {
		return tok, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoUserToken, userID)
}

// Service layers lookups and best-effort helpers on a bot Client.
//
// Helpers named Try*, Find* and BotGuilds treat a definitive Discord
// rejection (*APIError) as "nothing there" and return a neutral value.
// Breaker, rate-limit, retry and transport failures are still returned.
type Service struct {
	client  *Client
	tokens  UserTokenProvider
	lookups *cache.ReadThrough
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLookupCache caches the role and channel lists behind the Find*
// helpers in c under cache.ResponsePolicy. Lists go stale for at most the
// policy TTL; roles created through TryCreateRole invalidate their guild.
func WithLookupCache(c cache.Cache) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.lookups = cache.NewReadThrough(c, nil, cache.ResponsePolicy())
		}
	}
}

// NewService creates a service. tokens may be nil when user-scoped calls
// are not needed.
func NewService(client *Client, tokens UserTokenProvider, opts ...ServiceOption) *Service {
	s := &Service{client: client, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying bot client.
func (s *Service) Client() *Client { return s.client }

// Guild returns a reference to a guild.
func (s *Service) Guild(id string) *GuildRef { return s.client.Guild(id) }

// Channel returns a reference to a channel.
func (s *Service) Channel(id string) *ChannelRef { return s.client.Channel(id) }

// TryGuildDetails returns the guild, or nil when Discord refuses it.
func (s *Service) TryGuildDetails(ctx context.Context, guildID string) (*Guild, error) {
	return tryValue(s.client.Guild(guildID).Get(ctx))
}

// FindRoleByName returns the guild role named name, compared
// case-insensitively, or nil.
func (s *Service) FindRoleByName(ctx context.Context, guildID, name string) (*Role, error) {
	roles, err := tryValue(s.guildRoles(ctx, guildID))
	if err != nil {
		return nil, err
	}
	return findRole(roles, name), nil
}

// EveryoneRole returns the guild's @everyone role, or nil.
func (s *Service) EveryoneRole(ctx context.Context, guildID string) (*Role, error) {
	roles, err := tryValue(s.guildRoles(ctx, guildID))
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].ID == guildID {
			return &roles[i], nil
		}
	}
	return findRole(roles, "@everyone"), nil
}

// FindChannelByName returns the guild channel named name, compared
// case-insensitively, or nil.
func (s *Service) FindChannelByName(ctx context.Context, guildID, name string) (*Channel, error) {
	channels, err := tryValue(s.guildChannels(ctx, guildID))
	if err != nil {
		return nil, err
	}
	for i := range channels {
		if strings.EqualFold(channels[i].Name, name) {
			return &channels[i], nil
		}
	}
	return nil, nil
}

// TryCreateRole creates a role, or returns nil when Discord refuses.
func (s *Service) TryCreateRole(ctx context.Context, guildID string, params RoleParams) (*Role, error) {
	role, err := tryValue(s.client.Guild(guildID).CreateRole(ctx, params))
	if role != nil {
		_ = s.lookups.Invalidate(ctx, lookupRoles, guildID)
	}
	return role, err
}

// BotGuilds lists the guilds the bot belongs to. A refusal yields an
// empty list.
func (s *Service) BotGuilds(ctx context.Context) ([]PartialGuild, error) {
	guilds, err := tryValue(s.client.CurrentUserGuilds(ctx))
	if err != nil {
		return nil, err
	}
	if guilds == nil {
		guilds = []PartialGuild{}
	}
	return guilds, nil
}

// TryBotGuilds is BotGuilds that also hides infrastructure failures. It
// reports whether the list came from Discord.
func (s *Service) TryBotGuilds(ctx context.Context) ([]PartialGuild, bool) {
	guilds, err := s.client.CurrentUserGuilds(ctx)
	if err != nil {
		return []PartialGuild{}, false
	}
	return guilds, true
}

// RateLimitStats returns the shared rate-limit snapshot.
func (s *Service) RateLimitStats(ctx context.Context) ratelimit.Snapshot {
	return s.client.RateLimitStats(ctx)
}

// ForUser returns a client acting as userID with their bearer token.
func (s *Service) ForUser(ctx context.Context, userID string) (*Client, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoUserToken, userID)
	}
	tok, err := s.tokens.UserToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.client.ForUser(tok)
}

const (
	lookupRoles    = "discord.roles"
	lookupChannels = "discord.channels"
)

func (s *Service) guildRoles(ctx context.Context, guildID string) ([]Role, error) {
	if s.lookups == nil {
		return s.client.Guild(guildID).Roles(ctx)
	}
	var roles []Role
	err := s.lookup(ctx, lookupRoles, guildID, "/roles", &roles)
	return roles, err
}

func (s *Service) guildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	if s.lookups == nil {
		return s.client.Guild(guildID).Channels(ctx)
	}
	var channels []Channel
	err := s.lookup(ctx, lookupChannels, guildID, "/channels", &channels)
	return channels, err
}

func (s *Service) lookup(ctx context.Context, namespace, guildID, suffix string, out any) error {
	base, err := s.client.Guild(guildID).path()
	if err != nil {
		return err
	}
	raw, _, err := s.lookups.Load(ctx, namespace, guildID, func(ctx context.Context) ([]byte, error) {
		return s.client.GetRaw(ctx, base+suffix)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("discord: decode GET %s: %w", base+suffix, err)
	}
	return nil
}

func tryValue[T any](v T, err error) (T, error) {
	if err != nil && isDefinitive(err) {
		var zero T
		return zero, nil
	}
	return v, err
}
