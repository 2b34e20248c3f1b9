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

const expenditureColumns = `e.id, e.asset_id, e.quantity, e.expenditure_date, e.base_id, e.reason,
	        e.reported_by, e.created_at, a.model_name, et.name, b.name`

const expenditureFrom = `FROM expenditures e
	 JOIN assets a ON a.id = e.asset_id
	 JOIN equipment_types et ON et.id = a.equipment_type_id
	 JOIN bases b ON b.id = e.base_id`

func scanExpenditure(s scanner) (model.Expenditure, error) {
	var e model.Expenditure
	err := s.Scan(&e.ID, &e.AssetID, &e.Quantity, &e.ExpenditureDate, &e.BaseID, &e.Reason,
		&e.ReportedBy, &e.CreatedAt, &e.AssetModel, &e.EquipmentTypeName, &e.BaseName)
	return e, err
}

// ExpenditureOutcome pairs the recorded expenditure with the ledger debit.
type ExpenditureOutcome struct {
	Expenditure *model.Expenditure
	Debit       DebitResult
	Fungible    bool
}

// Clamped reports whether a fungible debit was cut short by the balance.
// Serialized assets are never debited, so they never clamp.
func (o *ExpenditureOutcome) Clamped() bool {
	return o.Fungible && o.Debit.Clamped()
}

// CreateExpenditure records consumption of an asset. A fungible asset is
// debited with clamping, so expending more than the balance leaves zero.
func CreateExpenditure(ctx context.Context, db *sql.DB, e model.Expenditure, entry *model.AuditEntry) (*ExpenditureOutcome, error) {
	if e.Quantity <= 0 {
		return nil, model.Validation("quantity must be positive", "quantityExpended")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, e.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, model.NotFound("asset")
	}
	if asset.CurrentBaseID != e.BaseID {
		return nil, model.Validation("asset is not held at the expenditure base", "baseId")
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenditures (id, asset_id, quantity, expenditure_date, base_id, reason, reported_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AssetID, e.Quantity, e.ExpenditureDate.UTC(), e.BaseID, e.Reason, e.ReportedBy, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording expenditure: %w", err)
	}

	out := &ExpenditureOutcome{
		Debit:    DebitResult{Requested: e.Quantity, Balance: asset.CurrentBalance},
		Fungible: asset.IsFungible,
	}
	if asset.IsFungible {
		if out.Debit, err = Debit(ctx, tx, asset.ID, e.Quantity); err != nil {
			return nil, err
		}
	}

	if entry != nil {
		entry.Details = map[string]any{
			"expenditureId":     e.ID,
			"assetId":           e.AssetID,
			"quantityRequested": out.Debit.Requested,
			"quantityApplied":   out.Debit.Applied,
			"clamped":           out.Clamped(),
			"balance":           out.Debit.Balance,
			"baseId":            e.BaseID,
		}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing expenditure: %w", err)
	}

	if out.Expenditure, err = GetExpenditure(ctx, db, e.ID); err != nil {
		return nil, err
	}
	return out, nil
}

// GetExpenditure returns an expenditure by ID.
func GetExpenditure(ctx context.Context, db *sql.DB, id string) (*model.Expenditure, error) {
	e, err := scanExpenditure(db.QueryRowContext(ctx, `SELECT `+expenditureColumns+` `+expenditureFrom+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting expenditure: %w", err)
	}
	return &e, nil
}

// ListExpenditures returns one page of expenditures in scope, newest first.
func ListExpenditures(ctx context.Context, db *sql.DB, scope access.Scope, f model.ExpenditureFilter) (*model.Page[model.Expenditure], error) {
	var w where
	w.scope(scope, "e.base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.dateRange("e.expenditure_date", f.DateRange)

	page, err := listPage(ctx, db, expenditureColumns, expenditureFrom, &w,
		`e.created_at DESC, e.rowid DESC`, f.PageRequest,
		func(rows *sql.Rows) (model.Expenditure, error) { return scanExpenditure(rows) })
	if err != nil {
		return nil, fmt.Errorf("listing expenditures: %w", err)
	}
	return page, nil
}
