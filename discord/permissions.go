package discord

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Permission is a Discord permission bitmask.
type Permission uint64

// Discord permission bits.
const (
	PermCreateInstantInvite              Permission = 1 << 0
	PermKickMembers                      Permission = 1 << 1
	PermBanMembers                       Permission = 1 << 2
	PermAdministrator                    Permission = 1 << 3
	PermManageChannels                   Permission = 1 << 4
	PermManageGuild                      Permission = 1 << 5
	PermAddReactions                     Permission = 1 << 6
	PermViewAuditLog                     Permission = 1 << 7
	PermPrioritySpeaker                  Permission = 1 << 8
	PermStream                           Permission = 1 << 9
	PermViewChannel                      Permission = 1 << 10
	PermSendMessages                     Permission = 1 << 11
	PermSendTTSMessages                  Permission = 1 << 12
	PermManageMessages                   Permission = 1 << 13
	PermEmbedLinks                       Permission = 1 << 14
	PermAttachFiles                      Permission = 1 << 15
	PermReadMessageHistory               Permission = 1 << 16
	PermMentionEveryone                  Permission = 1 << 17
	PermUseExternalEmojis                Permission = 1 << 18
	PermViewGuildInsights                Permission = 1 << 19
	PermConnect                          Permission = 1 << 20
	PermSpeak                            Permission = 1 << 21
	PermMuteMembers                      Permission = 1 << 22
	PermDeafenMembers                    Permission = 1 << 23
	PermMoveMembers                      Permission = 1 << 24
	PermUseVAD                           Permission = 1 << 25
	PermChangeNickname                   Permission = 1 << 26
	PermManageNicknames                  Permission = 1 << 27
	PermManageRoles                      Permission = 1 << 28
	PermManageWebhooks                   Permission = 1 << 29
	PermManageGuildExpressions           Permission = 1 << 30
	PermUseApplicationCommands           Permission = 1 << 31
	PermRequestToSpeak                   Permission = 1 << 32
	PermManageEvents                     Permission = 1 << 33
	PermManageThreads                    Permission = 1 << 34
	PermCreatePublicThreads              Permission = 1 << 35
	PermCreatePrivateThreads             Permission = 1 << 36
	PermUseExternalStickers              Permission = 1 << 37
	PermSendMessagesInThreads            Permission = 1 << 38
	PermUseEmbeddedActivities            Permission = 1 << 39
	PermModerateMembers                  Permission = 1 << 40
	PermViewCreatorMonetizationAnalytics Permission = 1 << 41
	PermUseSoundboard                    Permission = 1 << 42
	PermCreateGuildExpressions           Permission = 1 << 43
	PermCreateEvents                     Permission = 1 << 44
	PermUseExternalSounds                Permission = 1 << 45
	PermSendVoiceMessages                Permission = 1 << 46
	PermSendPolls                        Permission = 1 << 49
	PermUseExternalApps                  Permission = 1 << 50
)

// permissionNames is ordered by bit.
var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermCreateInstantInvite, "CREATE_INSTANT_INVITE"},
	{PermKickMembers, "KICK_MEMBERS"},
	{PermBanMembers, "BAN_MEMBERS"},
	{PermAdministrator, "ADMINISTRATOR"},
	{PermManageChannels, "MANAGE_CHANNELS"},
	{PermManageGuild, "MANAGE_GUILD"},
	{PermAddReactions, "ADD_REACTIONS"},
	{PermViewAuditLog, "VIEW_AUDIT_LOG"},
	{PermPrioritySpeaker, "PRIORITY_SPEAKER"},
	{PermStream, "STREAM"},
	{PermViewChannel, "VIEW_CHANNEL"},
	{PermSendMessages, "SEND_MESSAGES"},
	{PermSendTTSMessages, "SEND_TTS_MESSAGES"},
	{PermManageMessages, "MANAGE_MESSAGES"},
	{PermEmbedLinks, "EMBED_LINKS"},
	{PermAttachFiles, "ATTACH_FILES"},
	{PermReadMessageHistory, "READ_MESSAGE_HISTORY"},
	{PermMentionEveryone, "MENTION_EVERYONE"},
	{PermUseExternalEmojis, "USE_EXTERNAL_EMOJIS"},
	{PermViewGuildInsights, "VIEW_GUILD_INSIGHTS"},
	{PermConnect, "CONNECT"},
	{PermSpeak, "SPEAK"},
	{PermMuteMembers, "MUTE_MEMBERS"},
	{PermDeafenMembers, "DEAFEN_MEMBERS"},
	{PermMoveMembers, "MOVE_MEMBERS"},
	{PermUseVAD, "USE_VAD"},
	{PermChangeNickname, "CHANGE_NICKNAME"},
	{PermManageNicknames, "MANAGE_NICKNAMES"},
	{PermManageRoles, "MANAGE_ROLES"},
	{PermManageWebhooks, "MANAGE_WEBHOOKS"},
	{PermManageGuildExpressions, "MANAGE_GUILD_EXPRESSIONS"},
	{PermUseApplicationCommands, "USE_APPLICATION_COMMANDS"},
	{PermRequestToSpeak, "REQUEST_TO_SPEAK"},
	{PermManageEvents, "MANAGE_EVENTS"},
	{PermManageThreads, "MANAGE_THREADS"},
	{PermCreatePublicThreads, "CREATE_PUBLIC_THREADS"},
	{PermCreatePrivateThreads, "CREATE_PRIVATE_THREADS"},
	{PermUseExternalStickers, "USE_EXTERNAL_STICKERS"},
	{PermSendMessagesInThreads, "SEND_MESSAGES_IN_THREADS"},
	{PermUseEmbeddedActivities, "USE_EMBEDDED_ACTIVITIES"},
	{PermModerateMembers, "MODERATE_MEMBERS"},
	{PermViewCreatorMonetizationAnalytics, "VIEW_CREATOR_MONETIZATION_ANALYTICS"},
	{PermUseSoundboard, "USE_SOUNDBOARD"},
	{PermCreateGuildExpressions, "CREATE_GUILD_EXPRESSIONS"},
	{PermCreateEvents, "CREATE_EVENTS"},
	{PermUseExternalSounds, "USE_EXTERNAL_SOUNDS"},
	{PermSendVoiceMessages, "SEND_VOICE_MESSAGES"},
	{PermSendPolls, "SEND_POLLS"},
	{PermUseExternalApps, "USE_EXTERNAL_APPS"},
}

// HasPermission reports whether bitmask grants perm. Administrator grants
// everything.
func HasPermission(bitmask, perm Permission) bool {
	return bitmask&PermAdministrator != 0 || bitmask&perm != 0
}

// Has is HasPermission with p as the bitmask.
func (p Permission) Has(perm Permission) bool {
	return HasPermission(p, perm)
}

// Names returns the names of the set bits in bit order. Bits without a
// name are omitted.
func (p Permission) Names() []string {
	names := make([]string, 0, bits.OnesCount64(uint64(p)))
	for _, pn := range permissionNames {
		if p&pn.perm != 0 {
			names = append(names, pn.name)
		}
	}
	return names
}

// String joins the bit names with "|". Unnamed bits are rendered in hex.
func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}
	names := p.Names()
	var known Permission
	for _, pn := range permissionNames {
		known |= pn.perm
	}
	if rest := p &^ known; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint64(rest)))
	}
	return strings.Join(names, "|")
}

// ParsePermissions accepts Discord's decimal string form or a list of
// names separated by "|" or ",", case-insensitive.
func ParsePermissions(s string) (Permission, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Permission(n), nil
	}

	var out Permission
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		p, ok := permissionByName(name)
		if !ok {
			return 0, fmt.Errorf("discord: unknown permission %q", part)
		}
		out |= p
	}
	return out, nil
}

func permissionByName(name string) (Permission, bool) {
	for _, pn := range permissionNames {
		if pn.name == name {
			return pn.perm, true
		}
	}
	return 0, false
}

// MarshalJSON encodes p as Discord's decimal string.
func (p Permission) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(p), 10))
}

// UnmarshalJSON accepts a decimal string or a number.
func (p *Permission) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("discord: invalid permission bitmask %q", s)
		}
		*p = Permission(n)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("discord: invalid permission bitmask %s", b)
	}
	*p = Permission(n)
	return nil
}
