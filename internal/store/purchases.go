package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/armory/internal/access"
	"github.com/erazemk/armory/internal/model"
	"github.com/google/uuid"
)

const purchaseColumns = `p.id, p.asset_id, p.quantity, p.unit_cost, p.total_cost, p.supplier_info,
	        p.purchase_order_number, p.purchase_date, p.receiving_base_id, p.recorded_by, p.created_at,
	        a.model_name, et.name, b.name, u.full_name`

const purchaseFrom = `FROM purchases p
	 JOIN assets a ON a.id = p.asset_id
	 JOIN equipment_types et ON et.id = a.equipment_type_id
	 JOIN bases b ON b.id = p.receiving_base_id
	 JOIN users u ON u.id = p.recorded_by`

func scanPurchase(s scanner) (model.Purchase, error) {
	var p model.Purchase
	err := s.Scan(&p.ID, &p.AssetID, &p.Quantity, &p.UnitCost, &p.TotalCost, &p.SupplierInfo,
		&p.PurchaseOrderNumber, &p.PurchaseDate, &p.ReceivingBaseID, &p.RecordedBy, &p.CreatedAt,
		&p.AssetModel, &p.EquipmentTypeName, &p.BaseName, &p.RecordedByName)
	return p, err
}

// CreatePurchase records received stock. For a fungible asset the balance is
// credited in the same transaction as the purchase row and its audit entry.
func CreatePurchase(ctx context.Context, db *sql.DB, p model.Purchase, entry *model.AuditEntry) (*model.Purchase, error) {
	if p.Quantity <= 0 {
		return nil, model.Validation("quantity must be positive", "quantity")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, p.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, model.NotFound("asset")
	}
	if asset.CurrentBaseID != p.ReceivingBaseID {
		return nil, model.Validation("asset is not held at the receiving base", "receivingBaseId")
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (id, asset_id, quantity, unit_cost, total_cost, supplier_info,
		                        purchase_order_number, purchase_date, receiving_base_id, recorded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AssetID, p.Quantity, p.UnitCost, p.TotalCost, p.SupplierInfo,
		p.PurchaseOrderNumber, p.PurchaseDate.UTC(), p.ReceivingBaseID, p.RecordedBy, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording purchase: %w", err)
	}

	balance := asset.CurrentBalance
	if asset.IsFungible {
		if balance, err = Credit(ctx, tx, asset.ID, p.Quantity); err != nil {
			return nil, err
		}
	}

	if entry != nil {
		entry.Details = map[string]any{
			"purchaseId":      p.ID,
			"assetId":         p.AssetID,
			"quantity":        p.Quantity,
			"receivingBaseId": p.ReceivingBaseID,
			"balance":         balance,
		}
		if p.TotalCost.Valid {
			entry.Details["totalCost"] = p.TotalCost.Decimal.String()
		}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing purchase: %w", err)
	}

	return GetPurchase(ctx, db, p.ID)
}

// GetPurchase returns a purchase by ID.
func GetPurchase(ctx context.Context, db *sql.DB, id string) (*model.Purchase, error) {
	p, err := scanPurchase(db.QueryRowContext(ctx, `SELECT `+purchaseColumns+` `+purchaseFrom+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting purchase: %w", err)
	}
	return &p, nil
}

// ListPurchases returns one page of purchases in scope, newest first.
func ListPurchases(ctx context.Context, db *sql.DB, scope access.Scope, f model.PurchaseFilter) (*model.Page[model.Purchase], error) {
	var w where
	w.scope(scope, "p.receiving_base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.dateRange("p.purchase_date", f.DateRange)

	page, err := listPage(ctx, db, purchaseColumns, purchaseFrom, &w,
		`p.created_at DESC, p.rowid DESC`, f.PageRequest,
		func(rows *sql.Rows) (model.Purchase, error) { return scanPurchase(rows) })
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return page, nil
}
