package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/armory/internal/model"
)

// The ledger is the only code that changes assets.current_balance. Every
// function takes a *sql.Tx so the balance change commits or rolls back with
// the record that caused it.

// DebitResult reports what a debit actually removed.
type DebitResult struct {
	Requested int
	Applied   int
	Balance   int
}

// Clamped reports whether the debit was reduced to keep the balance at zero.
func (r DebitResult) Clamped() bool {
	return r.Applied < r.Requested
}

// Credit adds quantity to a fungible asset and returns the new balance.
func Credit(ctx context.Context, tx *sql.Tx, assetID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, model.Validation("quantity must be positive", "quantity")
	}

	var balance int
	err := tx.QueryRowContext(ctx,
		`UPDATE assets SET current_balance = current_balance + ?, updated_at = ?
		 WHERE id = ? AND is_fungible = 1
		 RETURNING current_balance`,
		quantity, now(), assetID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFound("fungible asset")
	}
	if err != nil {
		return 0, fmt.Errorf("crediting asset: %w", err)
	}
	return balance, nil
}

// Debit removes quantity from a fungible asset. A debit larger than the
// balance is clamped so the balance stops at zero; the result reports the
// requested and applied amounts.
func Debit(ctx context.Context, tx *sql.Tx, assetID string, quantity int) (DebitResult, error) {
	if quantity <= 0 {
		return DebitResult{}, model.Validation("quantity must be positive", "quantity")
	}

	var before int
	err := tx.QueryRowContext(ctx,
		`SELECT current_balance FROM assets WHERE id = ? AND is_fungible = 1`, assetID,
	).Scan(&before)
	if errors.Is(err, sql.ErrNoRows) {
		return DebitResult{}, model.NotFound("fungible asset")
	}
	if err != nil {
		return DebitResult{}, fmt.Errorf("reading balance: %w", err)
	}

	var after int
	err = tx.QueryRowContext(ctx,
		`UPDATE assets SET current_balance = MAX(0, current_balance - ?), updated_at = ?
		 WHERE id = ?
		 RETURNING current_balance`,
		quantity, now(), assetID,
	).Scan(&after)
	if err != nil {
		return DebitResult{}, fmt.Errorf("debiting asset: %w", err)
	}

	return DebitResult{Requested: quantity, Applied: before - after, Balance: after}, nil
}

// LocateFungibleSibling returns the fungible asset of equipmentTypeID held at
// baseID, or nil if the base has none.
func LocateFungibleSibling(ctx context.Context, tx *sql.Tx, equipmentTypeID, baseID string) (*model.Asset, error) {
	row := tx.QueryRowContext(ctx,
		assetSelect+` WHERE a.equipment_type_id = ? AND a.current_base_id = ? AND a.is_fungible = 1
		 ORDER BY a.created_at LIMIT 1`,
		equipmentTypeID, baseID,
	)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locating sibling asset: %w", err)
	}
	return a, nil
}
