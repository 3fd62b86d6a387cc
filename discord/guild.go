package discord

import (
	"context"
	"strings"
	"time"
)

// DefaultDeleteMessageDays is how much message history a ban removes when
// the caller does not say otherwise.
const DefaultDeleteMessageDays = 7

// GuildRef addresses one guild. Each method maps to a single REST call.
type GuildRef struct {
	client *Client
	id     string
}

// ID returns the guild id.
func (g *GuildRef) ID() string { return g.id }

func (g *GuildRef) path(ids ...string) (string, error) {
	if err := checkIDs(append([]string{g.id}, ids...)...); err != nil {
		return "", err
	}
	return "/guilds/" + g.id, nil
}

// Get fetches the guild.
func (g *GuildRef) Get(ctx context.Context) (*Guild, error) {
	base, err := g.path()
	if err != nil {
		return nil, err
	}
	var guild Guild
	if err := g.client.Get(ctx, base, &guild); err != nil {
		return nil, err
	}
	return &guild, nil
}

// Roles lists the guild's roles.
func (g *GuildRef) Roles(ctx context.Context) ([]Role, error) {
	base, err := g.path()
	if err != nil {
		return nil, err
	}
	var roles []Role
	if err := g.client.Get(ctx, base+"/roles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// FindRole returns the first role whose name matches case-insensitively,
// or nil.
func (g *GuildRef) FindRole(ctx context.Context, name string) (*Role, error) {
	roles, err := g.Roles(ctx)
	if err != nil {
		return nil, err
	}
	return findRole(roles, name), nil
}

func findRole(roles []Role, name string) *Role {
	for i := range roles {
		if strings.EqualFold(roles[i].Name, name) {
			return &roles[i]
		}
	}
	return nil
}

// Channels lists the guild's channels.
func (g *GuildRef) Channels(ctx context.Context) ([]Channel, error) {
	base, err := g.path()
	if err != nil {
		return nil, err
	}
	var channels []Channel
	if err := g.client.Get(ctx, base+"/channels", &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// CreateChannel creates a channel in the guild.
func (g *GuildRef) CreateChannel(ctx context.Context, params CreateChannelParams) (*Channel, error) {
	base, err := g.path()
	if err != nil {
		return nil, err
	}
	var ch Channel
	if err := g.client.Post(ctx, base+"/channels", params, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Member returns a reference to a member of the guild.
func (g *GuildRef) Member(userID string) *MemberRef {
	return &MemberRef{guild: g, userID: userID}
}

// Role returns a reference to a role of the guild.
func (g *GuildRef) Role(roleID string) *RoleRef {
	return &RoleRef{guild: g, roleID: roleID}
}

// Ban bans a user. deleteMessageDays below zero uses
// DefaultDeleteMessageDays.
func (g *GuildRef) Ban(ctx context.Context, userID string, deleteMessageDays int) (bool, error) {
	base, err := g.path(userID)
	if err != nil {
		return false, err
	}
	if deleteMessageDays < 0 {
		deleteMessageDays = DefaultDeleteMessageDays
	}
	body := map[string]int{"delete_message_days": deleteMessageDays}
	return g.client.PutOK(ctx, base+"/bans/"+userID, body)
}

// Unban lifts a ban.
func (g *GuildRef) Unban(ctx context.Context, userID string) (bool, error) {
	base, err := g.path(userID)
	if err != nil {
		return false, err
	}
	return g.client.DeleteOK(ctx, base+"/bans/"+userID)
}

// Kick removes a member from the guild.
func (g *GuildRef) Kick(ctx context.Context, userID string) (bool, error) {
	base, err := g.path(userID)
	if err != nil {
		return false, err
	}
	return g.client.DeleteOK(ctx, base+"/members/"+userID)
}

// AssignRole adds a role to a member.
func (g *GuildRef) AssignRole(ctx context.Context, userID, roleID string) (bool, error) {
	base, err := g.path(userID, roleID)
	if err != nil {
		return false, err
	}
	return g.client.PutOK(ctx, base+"/members/"+userID+"/roles/"+roleID, nil)
}

// RemoveRole removes a role from a member.
func (g *GuildRef) RemoveRole(ctx context.Context, userID, roleID string) (bool, error) {
	base, err := g.path(userID, roleID)
	if err != nil {
		return false, err
	}
	return g.client.DeleteOK(ctx, base+"/members/"+userID+"/roles/"+roleID)
}

// CreateRole creates a role.
func (g *GuildRef) CreateRole(ctx context.Context, params RoleParams) (*Role, error) {
	base, err := g.path()
	if err != nil {
		return nil, err
	}
	var role Role
	if err := g.client.Post(ctx, base+"/roles", params, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// EditRole modifies a role.
func (g *GuildRef) EditRole(ctx context.Context, roleID string, params RoleParams) (*Role, error) {
	base, err := g.path(roleID)
	if err != nil {
		return nil, err
	}
	var role Role
	if err := g.client.Patch(ctx, base+"/roles/"+roleID, params, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole deletes a role.
func (g *GuildRef) DeleteRole(ctx context.Context, roleID string) (bool, error) {
	base, err := g.path(roleID)
	if err != nil {
		return false, err
	}
	return g.client.DeleteOK(ctx, base+"/roles/"+roleID)
}

// ModifyMember applies params to a member and returns the updated member.
func (g *GuildRef) ModifyMember(ctx context.Context, userID string, params MemberParams) (*Member, error) {
	base, err := g.path(userID)
	if err != nil {
		return nil, err
	}
	var m Member
	if err := g.client.Patch(ctx, base+"/members/"+userID, params, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SetNickname sets a member's nickname. An empty nick clears it.
func (g *GuildRef) SetNickname(ctx context.Context, userID, nick string) (bool, error) {
	return g.patchMember(ctx, userID, map[string]any{"nick": nick})
}

// Mute server-mutes or unmutes a member in voice.
func (g *GuildRef) Mute(ctx context.Context, userID string, mute bool) (bool, error) {
	return g.patchMember(ctx, userID, map[string]any{"mute": mute})
}

// Move moves a member to a voice channel. An empty channelID disconnects
// the member.
func (g *GuildRef) Move(ctx context.Context, userID, channelID string) (bool, error) {
	var target any
	if channelID != "" {
		if err := checkIDs(channelID); err != nil {
			return false, err
		}
		target = channelID
	}
	return g.patchMember(ctx, userID, map[string]any{"channel_id": target})
}

// Timeout prevents a member from interacting until the given time. A zero
// time clears the timeout.
func (g *GuildRef) Timeout(ctx context.Context, userID string, until time.Time) (bool, error) {
	var value any
	if !until.IsZero() {
		value = until.UTC().Format(time.RFC3339)
	}
	return g.patchMember(ctx, userID, map[string]any{"communication_disabled_until": value})
}

func (g *GuildRef) patchMember(ctx context.Context, userID string, body map[string]any) (bool, error) {
	base, err := g.path(userID)
	if err != nil {
		return false, err
	}
	return g.client.PatchOK(ctx, base+"/members/"+userID, body)
}
