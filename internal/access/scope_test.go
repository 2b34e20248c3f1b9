package access

import (
	"testing"

	"github.com/erazemk/armory/internal/model"
)

func TestResolve(t *testing.T) {
	admin := model.Identity{Roles: model.NewRoleSet(model.RoleAdmin)}
	officer := model.Identity{
		Roles: model.NewRoleSet(model.RoleLogisticsOfficer),
		Bases: []string{"b1", "b2"},
	}
	orphan := model.Identity{Roles: model.NewRoleSet(model.RoleBaseCommander)}

	tests := []struct {
		name      string
		id        model.Identity
		requested string
		wantAll   bool
		wantBases []string
	}{
		{"admin no request", admin, "", true, nil},
		{"admin explicit base", admin, "b7", false, []string{"b7"}},
		{"officer no request", officer, "", false, []string{"b1", "b2"}},
		{"officer own base", officer, "b2", false, []string{"b2"}},
		{"officer foreign base", officer, "b3", false, nil},
		{"no bases", orphan, "", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Resolve(tt.id, tt.requested)
			if s.IsUnrestricted() != tt.wantAll {
				t.Fatalf("IsUnrestricted() = %v, want %v", s.IsUnrestricted(), tt.wantAll)
			}
			got := s.BaseIDs()
			if len(got) != len(tt.wantBases) {
				t.Fatalf("BaseIDs() = %v, want %v", got, tt.wantBases)
			}
			for i := range got {
				if got[i] != tt.wantBases[i] {
					t.Errorf("BaseIDs()[%d] = %q, want %q", i, got[i], tt.wantBases[i])
				}
			}
			if !tt.wantAll && len(tt.wantBases) == 0 && !s.IsEmpty() {
				t.Error("expected empty scope")
			}
		})
	}
}

func TestPredicate(t *testing.T) {
	tests := []struct {
		name     string
		scope    Scope
		columns  []string
		wantSQL  string
		wantArgs int
	}{
		{"unrestricted", Unrestricted(), []string{"a.base_id"}, "1=1", 0},
		{"empty", Bases(), []string{"a.base_id"}, "1=0", 0},
		{"single column", Bases("b1", "b2"), []string{"a.base_id"}, "a.base_id IN (?,?)", 2},
		{"either column", Bases("b1"), []string{"t.source_base_id", "t.destination_base_id"},
			"(t.source_base_id IN (?) OR t.destination_base_id IN (?))", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.scope.Predicate(tt.columns...)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestAllows(t *testing.T) {
	if !Unrestricted().Allows("anything") {
		t.Error("unrestricted scope should allow every base")
	}
	s := Bases("b1")
	if !s.Allows("b1") || s.Allows("b2") {
		t.Error("restricted scope allows wrong bases")
	}
	if Bases().Allows("b1") {
		t.Error("empty scope should allow nothing")
	}
}
