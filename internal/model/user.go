package model

import (
	"fmt"
	"slices"
	"time"
)

// User represents an account. Roles and Bases are loaded from the join tables.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Roles        []Role    `json:"roles"`
	Bases        []BaseRef `json:"bases"`
}

// BaseRef is the short form of a base attached to a user.
type BaseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role is a named capability bundle.
type Role string

// Roles.
const (
	RoleAdmin            Role = "Admin"
	RoleBaseCommander    Role = "Base Commander"
	RoleLogisticsOfficer Role = "Logistics Officer"
)

// DefaultRole is granted to self-registered users.
const DefaultRole = RoleLogisticsOfficer

// ParseRole returns the role named s. Unknown names fail closed.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles.
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether any of roles is in the set.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles sorted by name.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), "password")
	}
	return nil
}
