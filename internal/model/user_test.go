package model

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Admin", false},
		{"Base Commander", false},
		{"Logistics Officer", false},
		// Unknown roles fail closed.
		{"admin", true},
		{"", true},
		{"Quartermaster", true},
	}

	for _, tt := range tests {
		_, err := ParseRole(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestRequireAny(t *testing.T) {
	tests := []struct {
		held    []Role
		allowed []Role
		wantErr bool
	}{
		{[]Role{RoleAdmin}, []Role{RoleAdmin, RoleLogisticsOfficer}, false},
		{[]Role{RoleLogisticsOfficer}, []Role{RoleAdmin, RoleLogisticsOfficer}, false},
		{[]Role{RoleBaseCommander}, []Role{RoleAdmin, RoleLogisticsOfficer}, true},
		{[]Role{RoleBaseCommander, RoleLogisticsOfficer}, []Role{RoleLogisticsOfficer}, false},
		{nil, []Role{RoleAdmin}, true},
		{[]Role{RoleAdmin}, nil, true},
	}

	for _, tt := range tests {
		id := Identity{Roles: NewRoleSet(tt.held...)}
		err := id.RequireAny(tt.allowed...)
		if (err != nil) != tt.wantErr {
			t.Errorf("RequireAny(%v) with %v error = %v, wantErr %v", tt.allowed, tt.held, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrForbidden) {
			t.Errorf("RequireAny error = %v, want ErrForbidden", err)
		}
	}
}

func TestCanAccessBase(t *testing.T) {
	admin := Identity{Roles: NewRoleSet(RoleAdmin)}
	officer := Identity{Roles: NewRoleSet(RoleLogisticsOfficer), Bases: []string{"b1", "b2"}}
	nobody := Identity{Roles: NewRoleSet(RoleBaseCommander)}

	tests := []struct {
		name string
		id   Identity
		base string
		want bool
	}{
		{"admin any base", admin, "b9", true},
		{"officer own base", officer, "b2", true},
		{"officer foreign base", officer, "b3", false},
		{"no bases", nobody, "b1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.CanAccessBase(tt.base); got != tt.want {
				t.Errorf("CanAccessBase(%q) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}

	if err := officer.RequireAnyBase("b3", "b1"); err != nil {
		t.Errorf("RequireAnyBase: %v", err)
	}
	if err := officer.RequireAnyBase("b3", "b4"); !errors.Is(err, ErrBaseDenied) {
		t.Errorf("RequireAnyBase error = %v, want ErrBaseDenied", err)
	}
}

func TestRoleSetSlice(t *testing.T) {
	s := NewRoleSet(RoleLogisticsOfficer, RoleAdmin, RoleAdmin)
	got := s.Slice()
	if len(got) != 2 || got[0] != RoleAdmin || got[1] != RoleLogisticsOfficer {
		t.Errorf("Slice() = %v", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"123456", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
		if err != nil && KindOf(err) != KindValidation {
			t.Errorf("ValidatePassword(%q) kind = %v, want validation", tt.password, KindOf(err))
		}
	}
}
