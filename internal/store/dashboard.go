package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/armory/internal/access"
	"github.com/erazemk/armory/internal/model"
)

// Dashboard aggregates. Each one is an independent read; callers that run
// several of them get no cross-query consistency.

func aggregate(ctx context.Context, db *sql.DB, what, query string, w *where) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("summing %s: %w", what, err)
	}
	return n, nil
}

// SumBalance returns the summed current balance of assets in scope.
func SumBalance(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	var w where
	w.scope(scope, "a.current_base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	return aggregate(ctx, db, "balance",
		`SELECT COALESCE(SUM(a.current_balance), 0) FROM assets a`, &w)
}

// SumPurchased returns the quantity purchased in scope within the window.
func SumPurchased(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	var w where
	w.scope(scope, "p.receiving_base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.dateRange("p.purchase_date", f.DateRange)
	return aggregate(ctx, db, "purchases",
		`SELECT COALESCE(SUM(p.quantity), 0) FROM purchases p JOIN assets a ON a.id = p.asset_id`, &w)
}

// SumTransfersIn returns the quantity of completed transfers into scope.
func SumTransfersIn(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	return sumTransfers(ctx, db, scope, f, "t.destination_base_id", "transfers in")
}

// SumTransfersOut returns the quantity of completed transfers out of scope.
func SumTransfersOut(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	return sumTransfers(ctx, db, scope, f, "t.source_base_id", "transfers out")
}

func sumTransfers(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter, column, what string) (int, error) {
	var w where
	w.add("t.status = ?", string(model.TransferCompleted))
	w.scope(scope, column)
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.dateRange("t.completed_at", f.DateRange)
	return aggregate(ctx, db, what,
		`SELECT COALESCE(SUM(t.quantity), 0) FROM transfers t JOIN assets a ON a.id = t.asset_id`, &w)
}

// SumExpended returns the quantity expended in scope within the window.
func SumExpended(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	var w where
	w.scope(scope, "e.base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	w.dateRange("e.expenditure_date", f.DateRange)
	return aggregate(ctx, db, "expenditures",
		`SELECT COALESCE(SUM(e.quantity), 0) FROM expenditures e JOIN assets a ON a.id = e.asset_id`, &w)
}

// CountActiveAssignments returns the number of active assignments in scope.
func CountActiveAssignments(ctx context.Context, db *sql.DB, scope access.Scope, f model.MetricsFilter) (int, error) {
	var w where
	w.add("s.is_active = 1")
	w.scope(scope, "s.base_id")
	w.eq("a.equipment_type_id", f.EquipmentTypeID)
	return aggregate(ctx, db, "assignments",
		`SELECT COUNT(*) FROM assignments s JOIN assets a ON a.id = s.asset_id`, &w)
}
