package auth

import (
	"context"
	"testing"
	"time"
)

func TestIdentity_HasRole(t *testing.T) {
	id := &Identity{Principal: "ops", Roles: []string{"viewer", RoleAdmin}}
	if !id.HasRole(RoleAdmin) {
		t.Error("HasRole(admin) = false, want true")
	}
	if id.HasRole("owner") {
		t.Error("HasRole(owner) = true, want false")
	}
}

func TestIdentity_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"never", time.Time{}, false},
		{"future", now.Add(time.Minute), false},
		{"past", now.Add(-time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := &Identity{ExpiresAt: tt.expiresAt}
			if got := id.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil {
		t.Error("IdentityFromContext(empty) should be nil")
	}
	if PrincipalFromContext(ctx) != "" {
		t.Error("PrincipalFromContext(empty) should be empty")
	}

	id := &Identity{Principal: "ops"}
	ctx = WithIdentity(ctx, id)
	if IdentityFromContext(ctx) != id {
		t.Error("IdentityFromContext() did not return the stored identity")
	}
	if PrincipalFromContext(ctx) != "ops" {
		t.Errorf("PrincipalFromContext() = %q, want ops", PrincipalFromContext(ctx))
	}
}
