package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/validate"
)

// TransferInput is the request to move stock between bases.
type TransferInput struct {
	AssetID           string    `json:"assetId" validate:"required,uuid"`
	Quantity          int       `json:"quantity" validate:"gt=0"`
	SourceBaseID      string    `json:"sourceBaseId" validate:"required,uuid"`
	DestinationBaseID string    `json:"destinationBaseId" validate:"required,uuid"`
	TransferDate      time.Time `json:"transferDate" validate:"required"`
	Reason            string    `json:"reason"`
}

// CreateTransfer initiates a transfer out of a base the caller holds. No
// stock moves until the transfer is completed.
func (s *Service) CreateTransfer(ctx context.Context, id *model.Identity, in TransferInput, meta model.RequestMeta) (*model.Transfer, error) {
	if err := authorize(id, movementRoles...); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.SourceBaseID == in.DestinationBaseID {
		return nil, model.ErrInvalidTransfer
	}
	if err := id.RequireBase(in.SourceBaseID); err != nil {
		return nil, err
	}

	entry := newEntry(id, model.ActionTransferInitiated, meta)
	t, err := store.CreateTransfer(ctx, s.DB, model.Transfer{
		AssetID:           in.AssetID,
		Quantity:          in.Quantity,
		SourceBaseID:      in.SourceBaseID,
		DestinationBaseID: in.DestinationBaseID,
		TransferDate:      in.TransferDate,
		Reason:            in.Reason,
		InitiatedBy:       id.UserID,
	}, entry)
	if err != nil {
		return nil, err
	}
	s.publish(entry)
	return t, nil
}

// UpdateTransferStatus completes or cancels an initiated transfer. The caller
// must hold the source or the destination base.
func (s *Service) UpdateTransferStatus(ctx context.Context, id *model.Identity, transferID, status string, meta model.RequestMeta) (*store.TransferOutcome, error) {
	if err := authorize(id, approvalRoles...); err != nil {
		return nil, err
	}
	target, err := model.ParseTransferTarget(status)
	if err != nil {
		return nil, err
	}

	t, err := store.GetTransfer(ctx, s.DB, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, model.NotFound("transfer")
	}
	if err := id.RequireAnyBase(t.SourceBaseID, t.DestinationBaseID); err != nil {
		return nil, err
	}

	action := model.ActionTransferCancelled
	if target == model.TransferCompleted {
		action = model.ActionTransferCompleted
	}
	entry := newEntry(id, action, meta)

	out, err := store.UpdateTransferStatus(ctx, s.DB, transferID, target, id.UserID, s.Policy, entry)
	if err != nil {
		return nil, err
	}
	if target == model.TransferCompleted && !out.DestinationCredited {
		slog.Warn("transfer completed without destination asset; quantity not credited",
			"transfer", transferID, "destination", t.DestinationBaseID, "quantity", t.Quantity)
	}
	s.publish(entry)
	return out, nil
}

// ListTransfers returns transfers whose source or destination is visible.
func (s *Service) ListTransfers(ctx context.Context, id *model.Identity, f model.TransferFilter) (*model.Page[model.Transfer], error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListTransfers(ctx, s.DB, scopeFor(id, f.BaseID), f)
}
