package discord

import "time"

// User is a Discord user.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    *string `json:"global_name,omitempty"`
	Discriminator string  `json:"discriminator,omitempty"`
	Avatar        *string `json:"avatar,omitempty"`
	Bot           bool    `json:"bot,omitempty"`
}

// Guild is the full guild object from GET /guilds/{id}.
type Guild struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        *string `json:"icon,omitempty"`
	OwnerID     string  `json:"owner_id"`
	Description *string `json:"description,omitempty"`
	Roles       []Role  `json:"roles,omitempty"`
	// ApproximateMemberCount is only set when requested with with_counts.
	ApproximateMemberCount int `json:"approximate_member_count,omitempty"`
}

// PartialGuild is an entry of GET /users/@me/guilds.
type PartialGuild struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Icon        *string    `json:"icon,omitempty"`
	Owner       bool       `json:"owner"`
	Permissions Permission `json:"permissions"`
}

// Role is a guild role.
type Role struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       int        `json:"color"`
	Hoist       bool       `json:"hoist"`
	Position    int        `json:"position"`
	Permissions Permission `json:"permissions"`
	Managed     bool       `json:"managed"`
	Mentionable bool       `json:"mentionable"`
}

// ChannelType is the kind of a channel.
type ChannelType int

// Common channel types.
const (
	ChannelGuildText         ChannelType = 0
	ChannelDM                ChannelType = 1
	ChannelGuildVoice        ChannelType = 2
	ChannelGuildCategory     ChannelType = 4
	ChannelGuildAnnouncement ChannelType = 5
	ChannelGuildStageVoice   ChannelType = 13
	ChannelGuildForum        ChannelType = 15
)

// OverwriteType says whether a permission overwrite targets a role or a member.
type OverwriteType int

const (
	OverwriteRole   OverwriteType = 0
	OverwriteMember OverwriteType = 1
)

// Overwrite is a channel permission overwrite.
type Overwrite struct {
	ID    string        `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow Permission    `json:"allow"`
	Deny  Permission    `json:"deny"`
}

// Channel is a guild or DM channel.
type Channel struct {
	ID                   string      `json:"id"`
	Type                 ChannelType `json:"type"`
	GuildID              string      `json:"guild_id,omitempty"`
	Name                 string      `json:"name,omitempty"`
	Topic                *string     `json:"topic,omitempty"`
	Position             int         `json:"position,omitempty"`
	ParentID             *string     `json:"parent_id,omitempty"`
	NSFW                 bool        `json:"nsfw,omitempty"`
	PermissionOverwrites []Overwrite `json:"permission_overwrites,omitempty"`
}

// Member is a guild member.
type Member struct {
	User                       *User      `json:"user,omitempty"`
	Nick                       *string    `json:"nick,omitempty"`
	Roles                      []string   `json:"roles"`
	JoinedAt                   time.Time  `json:"joined_at"`
	Deaf                       bool       `json:"deaf"`
	Mute                       bool       `json:"mute"`
	CommunicationDisabledUntil *time.Time `json:"communication_disabled_until,omitempty"`
}

// Message is a channel message.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    *User     `json:"author,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Embeds    []Embed   `json:"embeds,omitempty"`
}

// Embed is a rich message embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedField is one name/value row of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// AllowedMentions restricts which mentions in a message notify.
type AllowedMentions struct {
	Parse []string `json:"parse"`
	Roles []string `json:"roles,omitempty"`
	Users []string `json:"users,omitempty"`
}

// MessageParams is the body of POST /channels/{id}/messages.
type MessageParams struct {
	Content         string           `json:"content,omitempty"`
	TTS             bool             `json:"tts,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// CreateChannelParams is the body of POST /guilds/{id}/channels.
type CreateChannelParams struct {
	Name                 string      `json:"name"`
	Type                 ChannelType `json:"type"`
	Topic                string      `json:"topic,omitempty"`
	Position             *int        `json:"position,omitempty"`
	ParentID             string      `json:"parent_id,omitempty"`
	NSFW                 bool        `json:"nsfw,omitempty"`
	PermissionOverwrites []Overwrite `json:"permission_overwrites,omitempty"`
}

// ChannelParams is the body of PATCH /channels/{id}. Nil fields are left
// unchanged.
type ChannelParams struct {
	Name     *string `json:"name,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	Position *int    `json:"position,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
	NSFW     *bool   `json:"nsfw,omitempty"`
}

// RoleParams is the body of POST and PATCH /guilds/{id}/roles. Nil fields
// are left unchanged.
type RoleParams struct {
	Name        *string     `json:"name,omitempty"`
	Permissions *Permission `json:"permissions,omitempty"`
	Color       *int        `json:"color,omitempty"`
	Hoist       *bool       `json:"hoist,omitempty"`
	Mentionable *bool       `json:"mentionable,omitempty"`
}

// MemberParams is the body of PATCH /guilds/{id}/members/{userId}. Nil
// fields are left unchanged.
type MemberParams struct {
	Nick      *string  `json:"nick,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Mute      *bool    `json:"mute,omitempty"`
	Deaf      *bool    `json:"deaf,omitempty"`
	ChannelID *string  `json:"channel_id,omitempty"`
}

// Ptr returns a pointer to v, for optional params fields.
func Ptr[T any](v T) *T { return &v }
