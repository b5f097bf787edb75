package auth

import (
	"context"
	"testing"
)

func TestHasRole(t *testing.T) {
	dentist := Identity{ID: "u1", Roles: []string{RoleDentist}}
	if !dentist.HasRole(RoleDentist) {
		t.Error("dentist should have dentist role")
	}
	if dentist.HasRole(RoleFinance) {
		t.Error("dentist should not have finance role")
	}

	admin := Identity{ID: "u2", Roles: []string{RoleAdmin}}
	for _, role := range []string{RoleDentist, RoleAssistant, RoleReception, RoleFinance} {
		if !admin.HasRole(role) {
			t.Errorf("admin should imply %s", role)
		}
	}

	var nobody Identity
	if nobody.HasRole(RoleReception) {
		t.Error("zero identity should hold no roles")
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	want := Identity{ID: "u3", Name: "Ana", Roles: []string{RoleReception}}
	ctx := WithIdentity(context.Background(), want)

	got := IdentityFromContext(ctx)
	if got.ID != want.ID || got.Name != want.Name {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if id := IdentityFromContext(context.Background()); id.ID != "" {
		t.Errorf("bare context should yield the zero identity, got %+v", id)
	}
}
