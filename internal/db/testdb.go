package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return newTestDB(t, ":memory:")
}

// NewTestFileDB creates a schema-initialized database file in a temporary
// directory. Unlike NewTestDB it allows several concurrent connections.
func NewTestFileDB(t testing.TB) *sql.DB {
	t.Helper()
	return newTestDB(t, filepath.Join(t.TempDir(), "armory.db"))
}

func newTestDB(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
