// Package access narrows base-scoped reads to what an identity may see.
package access

import (
	"slices"
	"strings"

	"github.com/erazemk/armory/internal/model"
)

// Scope is the resolved set of bases a read may touch.
type Scope struct {
	all   bool
	bases []string
}

// Unrestricted returns a scope that allows every base.
func Unrestricted() Scope {
	return Scope{all: true}
}

// Bases returns a scope limited to ids. With no ids the scope is empty.
func Bases(ids ...string) Scope {
	return Scope{bases: slices.Clone(ids)}
}

// Resolve computes the scope for id given an optional requested base.
//
// Admins get the requested base verbatim, or everything when none is given.
// Everyone else is limited to their authorized bases; a requested base
// outside that set produces an empty scope rather than an error.
func Resolve(id model.Identity, requested string) Scope {
	if id.IsAdmin() {
		if requested == "" {
			return Unrestricted()
		}
		return Bases(requested)
	}
	if requested == "" {
		return Bases(id.Bases...)
	}
	if slices.Contains(id.Bases, requested) {
		return Bases(requested)
	}
	return Bases()
}

// IsUnrestricted reports whether the scope allows every base.
func (s Scope) IsUnrestricted() bool { return s.all }

// IsEmpty reports whether the scope matches nothing.
func (s Scope) IsEmpty() bool { return !s.all && len(s.bases) == 0 }

// Allows reports whether baseID is visible in the scope.
func (s Scope) Allows(baseID string) bool {
	return s.all || slices.Contains(s.bases, baseID)
}

// BaseIDs returns the bases of a restricted scope.
func (s Scope) BaseIDs() []string {
	return slices.Clone(s.bases)
}

// Predicate renders the scope as a SQL condition over columns. With more
// than one column the restriction applies if any column matches, which is
// how transfers are scoped over source and destination.
func (s Scope) Predicate(columns ...string) (string, []any) {
	if s.all || len(columns) == 0 {
		return "1=1", nil
	}
	if len(s.bases) == 0 {
		return "1=0", nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(s.bases)), ",")
	parts := make([]string, 0, len(columns))
	var args []any
	for _, col := range columns {
		parts = append(parts, col+" IN ("+placeholders+")")
		for _, b := range s.bases {
			args = append(args, b)
		}
	}
	if len(parts) == 1 {
		return parts[0], args
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
