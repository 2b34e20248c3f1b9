package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/armory/internal/model"
	"github.com/google/uuid"
)

// InsertAudit appends an audit entry. It fills in ID and CreatedAt when they
// are unset. Pass a *sql.Tx to make the entry part of a business transaction.
func InsertAudit(ctx context.Context, q querier, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	if e.Status == "" {
		e.Status = model.AuditSuccess
	}
	if e.Details == nil {
		e.Details = map[string]any{}
	}

	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encoding audit details: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO audit_log (id, user_id, action, details, ip_address, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullString(e.UserID), string(e.Action), string(details), e.IPAddress, string(e.Status), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries newest first.
func ListAudit(ctx context.Context, db *sql.DB, f model.AuditFilter) (*model.Page[model.AuditEntry], error) {
	var w where
	w.eq("user_id", f.UserID)
	w.eq("action", string(f.Action))
	w.dateRange("created_at", f.DateRange)

	page, err := listPage(ctx, db,
		`id, user_id, action, details, ip_address, status, created_at`,
		`FROM audit_log`, &w, `created_at DESC, rowid DESC`, f.PageRequest,
		func(rows *sql.Rows) (model.AuditEntry, error) {
			var e model.AuditEntry
			var userID sql.NullString
			var details string
			if err := rows.Scan(&e.ID, &userID, &e.Action, &details, &e.IPAddress, &e.Status, &e.CreatedAt); err != nil {
				return e, fmt.Errorf("scanning audit entry: %w", err)
			}
			e.UserID = userID.String
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return e, fmt.Errorf("decoding audit details: %w", err)
			}
			return e, nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	return page, nil
}

// CountAudit returns how many entries with action and status exist.
func CountAudit(ctx context.Context, db *sql.DB, action model.AuditAction, status model.AuditStatus) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE action = ? AND status = ?`, string(action), string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return n, nil
}
