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

const transferColumns = `t.id, t.asset_id, t.quantity, t.source_base_id, t.destination_base_id,
	        t.transfer_date, t.reason, t.status, t.initiated_by, t.received_by, t.completed_at, t.created_at,
	        a.model_name, et.name, sb.name, dst.name`

const transferFrom = `FROM transfers t
	 JOIN assets a ON a.id = t.asset_id
	 JOIN equipment_types et ON et.id = a.equipment_type_id
	 JOIN bases sb ON sb.id = t.source_base_id
	 JOIN bases dst ON dst.id = t.destination_base_id`

func scanTransfer(s scanner) (model.Transfer, error) {
	var t model.Transfer
	var receivedBy sql.NullString
	var completedAt sql.NullTime
	err := s.Scan(&t.ID, &t.AssetID, &t.Quantity, &t.SourceBaseID, &t.DestinationBaseID,
		&t.TransferDate, &t.Reason, &t.Status, &t.InitiatedBy, &receivedBy, &completedAt, &t.CreatedAt,
		&t.AssetModel, &t.EquipmentTypeName, &t.SourceBaseName, &t.DestinationBaseName)
	if err != nil {
		return t, err
	}
	if receivedBy.Valid {
		t.ReceivedBy = &receivedBy.String
	}
	t.CompletedAt = timePtr(completedAt)
	return t, nil
}

// CreateTransfer records a transfer in the Initiated state. No balance moves
// until the transfer is completed.
func CreateTransfer(ctx context.Context, db *sql.DB, t model.Transfer, entry *model.AuditEntry) (*model.Transfer, error) {
	if t.SourceBaseID == t.DestinationBaseID {
		return nil, model.ErrInvalidTransfer
	}
	if t.Quantity <= 0 {
		return nil, model.Validation("quantity must be positive", "quantity")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, t.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, model.NotFound("asset")
	}
	if asset.CurrentBaseID != t.SourceBaseID {
		return nil, model.Validation("asset is not held at the source base", "sourceBaseId")
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM bases WHERE id = ?`, t.DestinationBaseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("destination base")
	}
	if err != nil {
		return nil, fmt.Errorf("checking destination base: %w", err)
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transfers (id, asset_id, quantity, source_base_id, destination_base_id,
		                        transfer_date, reason, status, initiated_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AssetID, t.Quantity, t.SourceBaseID, t.DestinationBaseID,
		t.TransferDate.UTC(), t.Reason, string(model.TransferInitiated), t.InitiatedBy, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording transfer: %w", err)
	}

	if entry != nil {
		entry.Details = map[string]any{
			"transferId":        t.ID,
			"assetId":           t.AssetID,
			"quantity":          t.Quantity,
			"sourceBaseId":      t.SourceBaseID,
			"destinationBaseId": t.DestinationBaseID,
		}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer: %w", err)
	}

	return GetTransfer(ctx, db, t.ID)
}

// GetTransfer returns a transfer by ID.
func GetTransfer(ctx context.Context, db *sql.DB, id string) (*model.Transfer, error) {
	t, err := scanTransfer(db.QueryRowContext(ctx, `SELECT `+transferColumns+` `+transferFrom+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	return &t, nil
}

// ListTransfers returns one page of transfers whose source or destination
// is in scope, newest first.
func ListTransfers(ctx context.Context, db *sql.DB, scope access.Scope, f model.TransferFilter) (*model.Page[model.Transfer], error) {
	var w where
	w.scope(scope, "t.source_base_id", "t.destination_base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.eq("t.status", string(f.Status))
	w.dateRange("t.transfer_date", f.DateRange)

	page, err := listPage(ctx, db, transferColumns, transferFrom, &w,
		`t.created_at DESC, t.rowid DESC`, f.PageRequest,
		func(rows *sql.Rows) (model.Transfer, error) { return scanTransfer(rows) })
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	return page, nil
}

// TransferOutcome describes what a status update did to the ledger.
type TransferOutcome struct {
	Transfer *model.Transfer

	// DestinationCredited is false when a completed fungible transfer found
	// no sibling at the destination and the skip policy applied.
	DestinationCredited bool
	SiblingCreated      bool
	SourceBalance       int
	DestinationBalance  int
}

// UpdateTransferStatus moves an Initiated transfer to target. Completing a
// fungible transfer debits the source asset and credits the destination
// sibling; policy decides what happens when the destination has none.
// Completing a non-fungible transfer relocates the asset. Terminal
// transfers are rejected with model.ErrTransferClosed.
func UpdateTransferStatus(ctx context.Context, db *sql.DB, id string, target model.TransferStatus,
	actorID string, policy model.MissingSiblingPolicy, entry *model.AuditEntry) (*TransferOutcome, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var cur model.Transfer
	err = tx.QueryRowContext(ctx,
		`SELECT id, asset_id, quantity, source_base_id, destination_base_id, status
		 FROM transfers WHERE id = ?`, id,
	).Scan(&cur.ID, &cur.AssetID, &cur.Quantity, &cur.SourceBaseID, &cur.DestinationBaseID, &cur.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("transfer")
	}
	if err != nil {
		return nil, fmt.Errorf("reading transfer: %w", err)
	}

	effect, err := cur.Status.Transition(target)
	if err != nil {
		return nil, err
	}

	ts := now()
	var res sql.Result
	if target == model.TransferCompleted {
		res, err = tx.ExecContext(ctx,
			`UPDATE transfers SET status = ?, completed_at = ?, received_by = ?
			 WHERE id = ? AND status = ?`,
			string(target), ts, actorID, id, string(model.TransferInitiated),
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE transfers SET status = ? WHERE id = ? AND status = ?`,
			string(target), id, string(model.TransferInitiated),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating transfer status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrTransferClosed
	}

	out := &TransferOutcome{}
	details := map[string]any{
		"transferId":        cur.ID,
		"assetId":           cur.AssetID,
		"quantity":          cur.Quantity,
		"status":            string(target),
		"sourceBaseId":      cur.SourceBaseID,
		"destinationBaseId": cur.DestinationBaseID,
	}

	if effect == model.EffectMoveQuantity {
		if err := moveQuantity(ctx, tx, &cur, policy, out); err != nil {
			return nil, err
		}
		details["destinationCredited"] = out.DestinationCredited
		details["siblingCreated"] = out.SiblingCreated
		details["sourceBalance"] = out.SourceBalance
		details["destinationBalance"] = out.DestinationBalance
	}

	if entry != nil {
		entry.Details = details
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transfer status: %w", err)
	}

	out.Transfer, err = GetTransfer(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func moveQuantity(ctx context.Context, tx *sql.Tx, t *model.Transfer, policy model.MissingSiblingPolicy, out *TransferOutcome) error {
	asset, err := getAsset(ctx, tx, t.AssetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return model.NotFound("asset")
	}

	if !asset.IsFungible {
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET current_base_id = ?, updated_at = ? WHERE id = ?`,
			t.DestinationBaseID, now(), asset.ID,
		); err != nil {
			return fmt.Errorf("relocating asset: %w", err)
		}
		out.DestinationCredited = true
		out.SourceBalance = 0
		out.DestinationBalance = asset.CurrentBalance
		return nil
	}

	if asset.CurrentBalance < t.Quantity {
		return model.Conflict(fmt.Sprintf("insufficient balance at source base: have %d, need %d",
			asset.CurrentBalance, t.Quantity))
	}

	debit, err := Debit(ctx, tx, asset.ID, t.Quantity)
	if err != nil {
		return err
	}
	out.SourceBalance = debit.Balance

	sibling, err := LocateFungibleSibling(ctx, tx, asset.EquipmentTypeID, t.DestinationBaseID)
	if err != nil {
		return err
	}
	if sibling == nil {
		switch policy {
		case model.SiblingReject:
			return model.Conflict("destination base holds no fungible asset of this equipment type")
		case model.SiblingCreate:
			sibling = &model.Asset{
				EquipmentTypeID: asset.EquipmentTypeID,
				ModelName:       asset.ModelName,
				CurrentBaseID:   t.DestinationBaseID,
				Status:          model.AssetStatusOperational,
				IsFungible:      true,
			}
			if err := insertAsset(ctx, tx, sibling); err != nil {
				return err
			}
			out.SiblingCreated = true
		default:
			return nil
		}
	}

	balance, err := Credit(ctx, tx, sibling.ID, t.Quantity)
	if err != nil {
		return err
	}
	out.DestinationCredited = true
	out.DestinationBalance = balance
	return nil
}
