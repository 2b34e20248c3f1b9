package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/access"
	"github.com/erazemk/armory/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// now returns the current time in UTC. All stored timestamps go through it.
var now = func() time.Time { return time.Now().UTC() }

// where accumulates AND-ed SQL conditions and their arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// scope applies an access scope over one or more base columns.
func (w *where) scope(s access.Scope, columns ...string) {
	if s.IsUnrestricted() {
		return
	}
	clause, args := s.Predicate(columns...)
	w.add(clause, args...)
}

func (w *where) eq(column string, value string) {
	if value != "" {
		w.add(column+" = ?", value)
	}
}

func (w *where) dateRange(column string, r model.DateRange) {
	if !r.Start.IsZero() {
		w.add(column+" >= ?", r.Start.UTC())
	}
	if !r.End.IsZero() {
		w.add(column+" <= ?", r.End.UTC())
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// listPage runs a count and a paged select sharing the same FROM and WHERE.
func listPage[T any](ctx context.Context, q querier, columns, from string, w *where, orderBy string,
	p model.PageRequest, scan func(*sql.Rows) (T, error)) (*model.Page[T], error) {
	p = p.Normalize()

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) "+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	query := "SELECT " + columns + " " + from + w.String() + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args := append(append([]any{}, w.args...), p.Limit, p.Offset())
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &model.Page[T]{Items: items, Pagination: model.NewPagination(p, total)}, nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
