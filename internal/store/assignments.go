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

const assignmentColumns = `s.id, s.asset_id, s.assigned_to, s.assignment_date, s.base_id, s.purpose,
	        s.expected_return_date, s.returned_date, s.is_active, s.recorded_by, s.created_at,
	        a.model_name, u.full_name, b.name`

const assignmentFrom = `FROM assignments s
	 JOIN assets a ON a.id = s.asset_id
	 JOIN users u ON u.id = s.assigned_to
	 JOIN bases b ON b.id = s.base_id`

func scanAssignment(sc scanner) (model.Assignment, error) {
	var s model.Assignment
	var expected, returned sql.NullTime
	err := sc.Scan(&s.ID, &s.AssetID, &s.AssignedTo, &s.AssignmentDate, &s.BaseID, &s.Purpose,
		&expected, &returned, &s.IsActive, &s.RecordedBy, &s.CreatedAt,
		&s.AssetModel, &s.AssignedToName, &s.BaseName)
	if err != nil {
		return s, err
	}
	s.ExpectedReturnDate = timePtr(expected)
	s.ReturnedDate = timePtr(returned)
	return s, nil
}

// CreateAssignment hands an asset held at the assignment base to a user.
// A non-fungible asset can have only one active assignment.
func CreateAssignment(ctx context.Context, db *sql.DB, s model.Assignment, entry *model.AuditEntry) (*model.Assignment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	asset, err := getAsset(ctx, tx, s.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, model.NotFound("asset")
	}
	if asset.CurrentBaseID != s.BaseID {
		return nil, model.Validation("asset is not held at the assignment base", "baseOfAssignmentId")
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, s.AssignedTo).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("assignee")
	}
	if err != nil {
		return nil, fmt.Errorf("checking assignee: %w", err)
	}

	if !asset.IsFungible {
		var active int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM assignments WHERE asset_id = ? AND is_active = 1`, asset.ID,
		).Scan(&active); err != nil {
			return nil, fmt.Errorf("checking active assignments: %w", err)
		}
		if active > 0 {
			return nil, model.Conflict("asset is already assigned")
		}
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, asset_id, assigned_to, assignment_date, base_id, purpose,
		                          expected_return_date, is_active, recorded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		s.ID, s.AssetID, s.AssignedTo, s.AssignmentDate.UTC(), s.BaseID, s.Purpose,
		nullTime(s.ExpectedReturnDate), s.RecordedBy, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording assignment: %w", err)
	}

	if entry != nil {
		entry.Details = map[string]any{
			"assignmentId":     s.ID,
			"assetId":          s.AssetID,
			"assignedToUserId": s.AssignedTo,
			"baseId":           s.BaseID,
		}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing assignment: %w", err)
	}

	return GetAssignment(ctx, db, s.ID)
}

// GetAssignment returns an assignment by ID.
func GetAssignment(ctx context.Context, db *sql.DB, id string) (*model.Assignment, error) {
	s, err := scanAssignment(db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` `+assignmentFrom+` WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return &s, nil
}

// ReturnAssignment closes an active assignment. Returning twice fails with
// model.ErrAlreadyReturned.
func ReturnAssignment(ctx context.Context, db *sql.DB, id string, entry *model.AuditEntry) (*model.Assignment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var assetID string
	var active bool
	err = tx.QueryRowContext(ctx,
		`SELECT asset_id, is_active FROM assignments WHERE id = ?`, id,
	).Scan(&assetID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("assignment")
	}
	if err != nil {
		return nil, fmt.Errorf("reading assignment: %w", err)
	}
	if !active {
		return nil, model.ErrAlreadyReturned
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE assignments SET is_active = 0, returned_date = ? WHERE id = ? AND is_active = 1`,
		now(), id,
	); err != nil {
		return nil, fmt.Errorf("returning assignment: %w", err)
	}

	if entry != nil {
		entry.Details = map[string]any{"assignmentId": id, "assetId": assetID}
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing return: %w", err)
	}

	return GetAssignment(ctx, db, id)
}

// ListAssignments returns one page of assignments in scope, newest first.
func ListAssignments(ctx context.Context, db *sql.DB, scope access.Scope, f model.AssignmentFilter) (*model.Page[model.Assignment], error) {
	var w where
	w.scope(scope, "s.base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.eq("s.assigned_to", f.UserID)
	if f.IsActive != nil {
		w.add("s.is_active = ?", *f.IsActive)
	}

	page, err := listPage(ctx, db, assignmentColumns, assignmentFrom, &w,
		`s.created_at DESC, s.rowid DESC`, f.PageRequest,
		func(rows *sql.Rows) (model.Assignment, error) { return scanAssignment(rows) })
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	return page, nil
}
