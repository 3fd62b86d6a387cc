package discord

import (
	"context"
	"slices"
)

// MemberRef addresses one member of a guild.
type MemberRef struct {
	guild  *GuildRef
	userID string
}

// UserID returns the member's user id.
func (m *MemberRef) UserID() string { return m.userID }

// Get fetches the member.
func (m *MemberRef) Get(ctx context.Context) (*Member, error) {
	base, err := m.guild.path(m.userID)
	if err != nil {
		return nil, err
	}
	var member Member
	if err := m.guild.client.Get(ctx, base+"/members/"+m.userID, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Roles returns the member's role ids. @everyone is implicit and not
// listed.
func (m *MemberRef) Roles(ctx context.Context) ([]string, error) {
	member, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	return member.Roles, nil
}

// HasRole reports whether the member holds roleID.
func (m *MemberRef) HasRole(ctx context.Context, roleID string) (bool, error) {
	roles, err := m.Roles(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(roles, roleID), nil
}

// HighestRolePosition returns the largest position among the member's
// roles, or 0 when the member has none.
func (m *MemberRef) HighestRolePosition(ctx context.Context) (int, error) {
	member, roles, err := m.memberAndRoles(ctx)
	if err != nil {
		return 0, err
	}
	return highestPosition(member.Roles, roles), nil
}

// Permissions returns the member's guild-level permissions: the @everyone
// role combined with every role the member holds. Channel overwrites are
// not applied.
func (m *MemberRef) Permissions(ctx context.Context) (Permission, error) {
	member, roles, err := m.memberAndRoles(ctx)
	if err != nil {
		return 0, err
	}
	return basePermissions(m.guild.id, member.Roles, roles), nil
}

// HasPermission reports whether the member's guild-level permissions
// grant perm. Administrator grants everything.
func (m *MemberRef) HasPermission(ctx context.Context, perm Permission) (bool, error) {
	p, err := m.Permissions(ctx)
	if err != nil {
		return false, err
	}
	return HasPermission(p, perm), nil
}

// AddRole adds a role to the member.
func (m *MemberRef) AddRole(ctx context.Context, roleID string) (bool, error) {
	return m.guild.AssignRole(ctx, m.userID, roleID)
}

// RemoveRole removes a role from the member.
func (m *MemberRef) RemoveRole(ctx context.Context, roleID string) (bool, error) {
	return m.guild.RemoveRole(ctx, m.userID, roleID)
}

func (m *MemberRef) memberAndRoles(ctx context.Context) (*Member, []Role, error) {
	member, err := m.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	roles, err := m.guild.Roles(ctx)
	if err != nil {
		return nil, nil, err
	}
	return member, roles, nil
}

func highestPosition(memberRoles []string, roles []Role) int {
	highest := 0
	for _, r := range roles {
		if r.Position > highest && slices.Contains(memberRoles, r.ID) {
			highest = r.Position
		}
	}
	return highest
}

// basePermissions ORs the @everyone role, whose id equals the guild id,
// with the member's roles.
func basePermissions(guildID string, memberRoles []string, roles []Role) Permission {
	var p Permission
	for _, r := range roles {
		if r.ID == guildID || slices.Contains(memberRoles, r.ID) {
			p |= r.Permissions
		}
	}
	return p
}
