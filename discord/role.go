package discord

import "context"

// RoleRef addresses one role of a guild.
type RoleRef struct {
	guild  *GuildRef
	roleID string
}

// ID returns the role id.
func (r *RoleRef) ID() string { return r.roleID }

// Edit modifies the role.
func (r *RoleRef) Edit(ctx context.Context, params RoleParams) (*Role, error) {
	return r.guild.EditRole(ctx, r.roleID, params)
}

// Delete deletes the role.
func (r *RoleRef) Delete(ctx context.Context) (bool, error) {
	return r.guild.DeleteRole(ctx, r.roleID)
}

// SetPermissions replaces the role's permission bitmask.
func (r *RoleRef) SetPermissions(ctx context.Context, perms Permission) (*Role, error) {
	return r.guild.EditRole(ctx, r.roleID, RoleParams{Permissions: &perms})
}
