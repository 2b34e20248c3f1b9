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

// CreateBase creates a new base.
func CreateBase(ctx context.Context, db *sql.DB, name, location, description string) (*model.Base, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO bases (id, name, location, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, location, description, now(),
	)
	if isUniqueViolation(err) {
		return nil, model.Conflict("base already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("creating base: %w", err)
	}
	return GetBase(ctx, db, id)
}

// GetBase returns a base by ID.
func GetBase(ctx context.Context, db *sql.DB, id string) (*model.Base, error) {
	b := &model.Base{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, location, description, created_at FROM bases WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Location, &b.Description, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting base: %w", err)
	}
	return b, nil
}

// ListBases returns the bases visible in scope, ordered by name.
func ListBases(ctx context.Context, db *sql.DB, scope access.Scope) ([]model.Base, error) {
	var w where
	w.scope(scope, "id")

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, location, description, created_at FROM bases`+w.String()+` ORDER BY name`,
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bases: %w", err)
	}
	defer rows.Close()

	bases := []model.Base{}
	for rows.Next() {
		var b model.Base
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.Description, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning base: %w", err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

// CreateEquipmentType creates a new equipment type.
func CreateEquipmentType(ctx context.Context, db *sql.DB, name, category, description string) (*model.EquipmentType, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO equipment_types (id, name, category, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, category, description, now(),
	)
	if isUniqueViolation(err) {
		return nil, model.Conflict("equipment type already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("creating equipment type: %w", err)
	}

	et := &model.EquipmentType{}
	err = db.QueryRowContext(ctx,
		`SELECT id, name, category, description, created_at FROM equipment_types WHERE id = ?`, id,
	).Scan(&et.ID, &et.Name, &et.Category, &et.Description, &et.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting equipment type: %w", err)
	}
	return et, nil
}

// ListEquipmentTypes returns all equipment types ordered by name.
func ListEquipmentTypes(ctx context.Context, db *sql.DB) ([]model.EquipmentType, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, category, description, created_at FROM equipment_types ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment types: %w", err)
	}
	defer rows.Close()

	types := []model.EquipmentType{}
	for rows.Next() {
		var et model.EquipmentType
		if err := rows.Scan(&et.ID, &et.Name, &et.Category, &et.Description, &et.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning equipment type: %w", err)
		}
		types = append(types, et)
	}
	return types, rows.Err()
}
