package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
	"github.com/erazemk/armory/internal/validate"
)

// PurchaseInput is the request to record received stock.
type PurchaseInput struct {
	AssetID             string              `json:"assetId" validate:"required,uuid"`
	Quantity            int                 `json:"quantity" validate:"gt=0"`
	UnitCost            decimal.NullDecimal `json:"unitCost"`
	TotalCost           decimal.NullDecimal `json:"totalCost"`
	PurchaseDate        time.Time           `json:"purchaseDate" validate:"required"`
	SupplierInfo        string              `json:"supplierInfo"`
	ReceivingBaseID     string              `json:"receivingBaseId" validate:"required,uuid"`
	PurchaseOrderNumber string              `json:"purchaseOrderNumber"`
}

// CreatePurchase records a purchase at the receiving base. A missing total
// cost is derived from the unit cost.
func (s *Service) CreatePurchase(ctx context.Context, id *model.Identity, in PurchaseInput, meta model.RequestMeta) (*model.Purchase, error) {
	if err := authorize(id, purchaseRoles...); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.UnitCost.Valid && in.UnitCost.Decimal.IsNegative() {
		return nil, model.Validation("cost must not be negative", "unitCost")
	}
	if in.TotalCost.Valid && in.TotalCost.Decimal.IsNegative() {
		return nil, model.Validation("cost must not be negative", "totalCost")
	}
	if err := id.RequireBase(in.ReceivingBaseID); err != nil {
		return nil, err
	}

	total := in.TotalCost
	if !total.Valid && in.UnitCost.Valid {
		total = decimal.NewNullDecimal(in.UnitCost.Decimal.Mul(decimal.NewFromInt(int64(in.Quantity))))
	}

	entry := newEntry(id, model.ActionPurchaseCreated, meta)
	p, err := store.CreatePurchase(ctx, s.DB, model.Purchase{
		AssetID:             in.AssetID,
		Quantity:            in.Quantity,
		UnitCost:            in.UnitCost,
		TotalCost:           total,
		SupplierInfo:        in.SupplierInfo,
		PurchaseOrderNumber: in.PurchaseOrderNumber,
		PurchaseDate:        in.PurchaseDate,
		ReceivingBaseID:     in.ReceivingBaseID,
		RecordedBy:          id.UserID,
	}, entry)
	if err != nil {
		return nil, err
	}
	s.publish(entry)
	return p, nil
}

// ListPurchases returns purchases received at bases visible to id.
func (s *Service) ListPurchases(ctx context.Context, id *model.Identity, f model.PurchaseFilter) (*model.Page[model.Purchase], error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListPurchases(ctx, s.DB, scopeFor(id, f.BaseID), f)
}
