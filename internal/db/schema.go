package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are written by the
// application in UTC so that text ordering matches time ordering.
const schema = `
CREATE TABLE IF NOT EXISTS bases (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    location    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_types (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    category    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS roles (
    name TEXT PRIMARY KEY
);

INSERT OR IGNORE INTO roles (name) VALUES ('Admin'), ('Base Commander'), ('Logistics Officer');

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    full_name     TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role    TEXT NOT NULL REFERENCES roles(name),
    PRIMARY KEY (user_id, role)
);

CREATE TABLE IF NOT EXISTS user_bases (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    base_id TEXT NOT NULL REFERENCES bases(id),
    PRIMARY KEY (user_id, base_id)
);

CREATE TABLE IF NOT EXISTS assets (
    id                TEXT PRIMARY KEY,
    equipment_type_id TEXT NOT NULL REFERENCES equipment_types(id),
    model_name        TEXT NOT NULL,
    serial_number     TEXT UNIQUE,
    current_base_id   TEXT NOT NULL REFERENCES bases(id),
    status            TEXT NOT NULL DEFAULT 'Operational'
                      CHECK (status IN ('Operational', 'Maintenance', 'Damaged', 'InTransit')),
    is_fungible       INTEGER NOT NULL DEFAULT 0,
    current_balance   INTEGER NOT NULL DEFAULT 1 CHECK (current_balance >= 0),
    image             BLOB,
    image_mime        TEXT,
    created_at        DATETIME NOT NULL,
    updated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_type_base ON assets(equipment_type_id, current_base_id);

CREATE TABLE IF NOT EXISTS purchases (
    id                    TEXT PRIMARY KEY,
    asset_id              TEXT NOT NULL REFERENCES assets(id),
    quantity              INTEGER NOT NULL CHECK (quantity > 0),
    unit_cost             TEXT,
    total_cost            TEXT,
    supplier_info         TEXT NOT NULL DEFAULT '',
    purchase_order_number TEXT NOT NULL DEFAULT '',
    purchase_date         DATETIME NOT NULL,
    receiving_base_id     TEXT NOT NULL REFERENCES bases(id),
    recorded_by           TEXT NOT NULL REFERENCES users(id),
    created_at            DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transfers (
    id                  TEXT PRIMARY KEY,
    asset_id            TEXT NOT NULL REFERENCES assets(id),
    quantity            INTEGER NOT NULL CHECK (quantity > 0),
    source_base_id      TEXT NOT NULL REFERENCES bases(id),
    destination_base_id TEXT NOT NULL REFERENCES bases(id),
    transfer_date       DATETIME NOT NULL,
    reason              TEXT NOT NULL DEFAULT '',
    status              TEXT NOT NULL DEFAULT 'Initiated'
                        CHECK (status IN ('Initiated', 'Completed', 'Cancelled')),
    initiated_by        TEXT NOT NULL REFERENCES users(id),
    received_by         TEXT REFERENCES users(id),
    completed_at        DATETIME,
    created_at          DATETIME NOT NULL,
    CHECK (source_base_id <> destination_base_id)
);

CREATE TABLE IF NOT EXISTS assignments (
    id                   TEXT PRIMARY KEY,
    asset_id             TEXT NOT NULL REFERENCES assets(id),
    assigned_to          TEXT NOT NULL REFERENCES users(id),
    assignment_date      DATETIME NOT NULL,
    base_id              TEXT NOT NULL REFERENCES bases(id),
    purpose              TEXT NOT NULL DEFAULT '',
    expected_return_date DATETIME,
    returned_date        DATETIME,
    is_active            INTEGER NOT NULL DEFAULT 1,
    recorded_by          TEXT NOT NULL REFERENCES users(id),
    created_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS expenditures (
    id               TEXT PRIMARY KEY,
    asset_id         TEXT NOT NULL REFERENCES assets(id),
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    expenditure_date DATETIME NOT NULL,
    base_id          TEXT NOT NULL REFERENCES bases(id),
    reason           TEXT NOT NULL DEFAULT '',
    reported_by      TEXT NOT NULL REFERENCES users(id),
    created_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    id         TEXT PRIMARY KEY,
    user_id    TEXT,
    action     TEXT NOT NULL,
    details    TEXT NOT NULL DEFAULT '{}',
    ip_address TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL CHECK (status IN ('Success', 'Failure')),
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
