package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/validate"
)

// ExpenditureInput is the request to record consumed stock.
type ExpenditureInput struct {
	AssetID         string    `json:"assetId" validate:"required,uuid"`
	Quantity        int       `json:"quantityExpended" validate:"gt=0"`
	ExpenditureDate time.Time `json:"expenditureDate" validate:"required"`
	BaseID          string    `json:"baseId" validate:"required,uuid"`
	Reason          string    `json:"reason"`
}

// CreateExpenditure records consumption at a base the caller holds. The
// debit is clamped at zero; the outcome reports how much was removed.
func (s *Service) CreateExpenditure(ctx context.Context, id *model.Identity, in ExpenditureInput, meta model.RequestMeta) (*store.ExpenditureOutcome, error) {
	if err := authorize(id, movementRoles...); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := id.RequireBase(in.BaseID); err != nil {
		return nil, err
	}

	entry := newEntry(id, model.ActionExpenditureRecorded, meta)
	out, err := store.CreateExpenditure(ctx, s.DB, model.Expenditure{
		AssetID:         in.AssetID,
		Quantity:        in.Quantity,
		ExpenditureDate: in.ExpenditureDate,
		BaseID:          in.BaseID,
		Reason:          in.Reason,
		ReportedBy:      id.UserID,
	}, entry)
	if err != nil {
		return nil, err
	}
	if out.Clamped() {
		slog.Warn("expenditure exceeded balance; debit clamped",
			"asset", in.AssetID, "requested", out.Debit.Requested, "applied", out.Debit.Applied)
	}
	s.publish(entry)
	return out, nil
}

// ListExpenditures returns expenditures at bases visible to id.
func (s *Service) ListExpenditures(ctx context.Context, id *model.Identity, f model.ExpenditureFilter) (*model.Page[model.Expenditure], error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListExpenditures(ctx, s.DB, scopeFor(id, f.BaseID), f)
}
