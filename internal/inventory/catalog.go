package inventory

import (
	"context"
	"io"

	"github.com/erazemk/armory/internal/imaging"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

// ListAssets returns assets held at bases visible to id.
func (s *Service) ListAssets(ctx context.Context, id *model.Identity, f model.AssetFilter) ([]model.Asset, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListAssets(ctx, s.DB, scopeFor(id, f.BaseID), f)
}

// ListBases returns the bases visible to id.
func (s *Service) ListBases(ctx context.Context, id *model.Identity) ([]model.Base, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListBases(ctx, s.DB, scopeFor(id, ""))
}

// ListEquipmentTypes returns every equipment type.
func (s *Service) ListEquipmentTypes(ctx context.Context, id *model.Identity) ([]model.EquipmentType, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListEquipmentTypes(ctx, s.DB)
}

// ListUsers returns users authorized for a base visible to id, for picking
// an assignee.
func (s *Service) ListUsers(ctx context.Context, id *model.Identity) ([]model.User, error) {
	if err := authorize(id); err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, s.DB, scopeFor(id, ""))
}

// SetAssetImage stores a processed photo for an asset at a base the caller
// holds.
func (s *Service) SetAssetImage(ctx context.Context, id *model.Identity, assetID string, r io.Reader, meta model.RequestMeta) error {
	if err := authorize(id, purchaseRoles...); err != nil {
		return err
	}
	asset, err := store.GetAsset(ctx, s.DB, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return model.NotFound("asset")
	}
	if err := id.RequireBase(asset.CurrentBaseID); err != nil {
		return err
	}

	img, err := imaging.Process(r)
	if err != nil {
		return model.Validation(err.Error(), "image")
	}

	entry := newEntry(id, model.ActionAssetImageUpdated, meta)
	if err := store.SetAssetImage(ctx, s.DB, assetID, img.Data, img.MIME, entry); err != nil {
		return err
	}
	s.publish(entry)
	return nil
}

// AssetImage returns the stored photo of an asset visible to id. data is nil
// when the asset has no photo.
func (s *Service) AssetImage(ctx context.Context, id *model.Identity, assetID string) (data []byte, mime string, err error) {
	if err := authorize(id); err != nil {
		return nil, "", err
	}
	asset, err := store.GetAsset(ctx, s.DB, assetID)
	if err != nil {
		return nil, "", err
	}
	if asset == nil {
		return nil, "", model.NotFound("asset")
	}
	if err := id.RequireBase(asset.CurrentBaseID); err != nil {
		return nil, "", err
	}
	return store.GetAssetImage(ctx, s.DB, assetID)
}

// ListAudit returns audit entries. Admin only.
func (s *Service) ListAudit(ctx context.Context, id *model.Identity, f model.AuditFilter) (*model.Page[model.AuditEntry], error) {
	if err := authorize(id, model.RoleAdmin); err != nil {
		return nil, err
	}
	return store.ListAudit(ctx, s.DB, f)
}
