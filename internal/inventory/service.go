// Package inventory implements the role-gated operations on the ledger:
// purchases, transfers, assignments, expenditures and the dashboard. Every
// operation checks the caller's roles and bases before reaching the store.
package inventory

import (
	"database/sql"

	"github.com/erazemk/armory/internal/access"
	"github.com/erazemk/armory/internal/model"
)

// Publisher receives audit entries after their transaction committed.
type Publisher interface {
	Published(e model.AuditEntry) bool
}

// Service runs inventory operations against one database.
type Service struct {
	DB     *sql.DB
	Audit  Publisher
	Policy model.MissingSiblingPolicy
}

// New returns a service. audit may be nil.
func New(db *sql.DB, audit Publisher, policy model.MissingSiblingPolicy) *Service {
	if policy == "" {
		policy = model.SiblingSkip
	}
	return &Service{DB: db, Audit: audit, Policy: policy}
}

// Roles allowed to perform each kind of operation.
var (
	purchaseRoles = []model.Role{model.RoleAdmin, model.RoleLogisticsOfficer}
	movementRoles = []model.Role{model.RoleAdmin, model.RoleBaseCommander, model.RoleLogisticsOfficer}
	approvalRoles = []model.Role{model.RoleAdmin, model.RoleBaseCommander}
)

func authorize(id *model.Identity, roles ...model.Role) error {
	if id == nil {
		return model.Unauthenticated("not authenticated")
	}
	if len(roles) == 0 {
		return nil
	}
	return id.RequireAny(roles...)
}

func scopeFor(id *model.Identity, baseID string) access.Scope {
	return access.Resolve(*id, baseID)
}

func newEntry(id *model.Identity, action model.AuditAction, meta model.RequestMeta) *model.AuditEntry {
	return &model.AuditEntry{
		UserID:    id.UserID,
		Action:    action,
		IPAddress: meta.IP,
		Status:    model.AuditSuccess,
	}
}

func (s *Service) publish(e *model.AuditEntry) {
	if s.Audit != nil && e != nil {
		s.Audit.Published(*e)
	}
}
