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

const assetSelect = `SELECT a.id, a.equipment_type_id, a.model_name, a.serial_number, a.current_base_id,
	        a.status, a.is_fungible, a.current_balance, a.image_mime, a.created_at, a.updated_at,
	        et.name, et.category, b.name
	 FROM assets a
	 JOIN equipment_types et ON et.id = a.equipment_type_id
	 JOIN bases b ON b.id = a.current_base_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (*model.Asset, error) {
	a := &model.Asset{}
	var serial, mime sql.NullString
	if err := s.Scan(&a.ID, &a.EquipmentTypeID, &a.ModelName, &serial, &a.CurrentBaseID,
		&a.Status, &a.IsFungible, &a.CurrentBalance, &mime, &a.CreatedAt, &a.UpdatedAt,
		&a.EquipmentTypeName, &a.Category, &a.BaseName); err != nil {
		return nil, err
	}
	a.SerialNumber = serial.String
	a.ImageMime = mime.String
	return a, nil
}

// CreateAsset inserts an asset. Non-fungible assets always hold a balance of 1.
func CreateAsset(ctx context.Context, db *sql.DB, a model.Asset) (*model.Asset, error) {
	if err := insertAsset(ctx, db, &a); err != nil {
		return nil, err
	}
	return GetAsset(ctx, db, a.ID)
}

func insertAsset(ctx context.Context, q querier, a *model.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.AssetStatusOperational
	}
	if !a.IsFungible {
		a.CurrentBalance = 1
	}
	ts := now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO assets (id, equipment_type_id, model_name, serial_number, current_base_id,
		                     status, is_fungible, current_balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EquipmentTypeID, a.ModelName, nullString(a.SerialNumber), a.CurrentBaseID,
		a.Status, a.IsFungible, a.CurrentBalance, ts, ts,
	)
	if isUniqueViolation(err) {
		return model.Conflict("serial number already exists")
	}
	if err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	return nil
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, db *sql.DB, id string) (*model.Asset, error) {
	return getAsset(ctx, db, id)
}

func getAsset(ctx context.Context, q querier, id string) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx, assetSelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// ListAssets returns the assets visible in scope, narrowed by filter.
func ListAssets(ctx context.Context, db *sql.DB, scope access.Scope, f model.AssetFilter) ([]model.Asset, error) {
	var w where
	w.scope(scope, "a.current_base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)

	rows, err := db.QueryContext(ctx, assetSelect+w.String()+` ORDER BY et.name, a.model_name`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// GetAssetImage returns the stored photo of an asset.
func GetAssetImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM assets WHERE id = ?`, id,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting asset image: %w", err)
	}
	return data, mime.String, nil
}

// SetAssetImage stores a photo for an asset and records the audit entry in
// the same transaction.
func SetAssetImage(ctx context.Context, db *sql.DB, id string, data []byte, mime string, entry *model.AuditEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE assets SET image = ?, image_mime = ?, updated_at = ? WHERE id = ?`,
		data, mime, now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating asset image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NotFound("asset")
	}

	if entry != nil {
		entry.Details = map[string]any{"assetId": id, "mime": mime, "size": len(data)}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing asset image: %w", err)
	}
	return nil
}
