package model

import "slices"

// Identity is the resolved caller of an operation: who they are, which roles
// they hold and which bases they are authorized for.
type Identity struct {
	UserID   string
	Username string
	Roles    RoleSet
	Bases    []string
}

// IsAdmin reports whether the identity holds the Admin role.
func (id Identity) IsAdmin() bool {
	return id.Roles.Has(RoleAdmin)
}

// HasRole reports whether the identity holds r.
func (id Identity) HasRole(r Role) bool {
	return id.Roles.Has(r)
}

// RequireAny fails with ErrForbidden unless the identity holds one of roles.
func (id Identity) RequireAny(roles ...Role) error {
	if id.Roles.HasAny(roles...) {
		return nil
	}
	return ErrForbidden
}

// CanAccessBase reports whether the identity may act on baseID.
// Admins are authorized for every base.
func (id Identity) CanAccessBase(baseID string) bool {
	if id.IsAdmin() {
		return true
	}
	return slices.Contains(id.Bases, baseID)
}

// RequireBase fails with ErrBaseDenied unless the identity may act on baseID.
func (id Identity) RequireBase(baseID string) error {
	if id.CanAccessBase(baseID) {
		return nil
	}
	return ErrBaseDenied
}

// RequireAnyBase fails unless the identity may act on at least one of baseIDs.
func (id Identity) RequireAnyBase(baseIDs ...string) error {
	for _, b := range baseIDs {
		if id.CanAccessBase(b) {
			return nil
		}
	}
	return ErrBaseDenied
}
