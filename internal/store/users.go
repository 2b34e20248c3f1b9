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

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Roles        []model.Role
	Bases        []string
}

// CreateUser creates a user together with its role and base grants.
// A duplicate username or email is a conflict.
func CreateUser(ctx context.Context, db *sql.DB, nu NewUser) (*model.User, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	ts := now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, full_name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nu.Username, nu.Email, nu.FullName, nu.PasswordHash, ts, ts,
	)
	if isUniqueViolation(err) {
		return nil, model.Conflict("username or email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	for _, r := range nu.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, id, string(r),
		); err != nil {
			return nil, fmt.Errorf("granting role %q: %w", r, err)
		}
	}
	for _, b := range nu.Bases {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_bases (user_id, base_id) VALUES (?, ?)`, id, b,
		); err != nil {
			return nil, fmt.Errorf("granting base %q: %w", b, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user: %w", err)
	}

	return GetUser(ctx, db, id)
}

const userSelect = `SELECT id, username, email, full_name, password_hash, created_at, updated_at FROM users`

func scanUser(s scanner) (*model.User, error) {
	u := &model.User{}
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a user by ID with roles and bases loaded.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if err := loadGrants(ctx, db, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername returns a user by username with roles and bases loaded.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, userSelect+` WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	if err := loadGrants(ctx, db, u); err != nil {
		return nil, err
	}
	return u, nil
}

func loadGrants(ctx context.Context, db *sql.DB, u *model.User) error {
	rows, err := db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, u.ID,
	)
	if err != nil {
		return fmt.Errorf("loading roles: %w", err)
	}
	u.Roles = []model.Role{}
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			rows.Close()
			return fmt.Errorf("scanning role: %w", err)
		}
		u.Roles = append(u.Roles, model.Role(r))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.QueryContext(ctx,
		`SELECT b.id, b.name FROM user_bases ub JOIN bases b ON b.id = ub.base_id
		 WHERE ub.user_id = ? ORDER BY b.name`, u.ID,
	)
	if err != nil {
		return fmt.Errorf("loading bases: %w", err)
	}
	defer rows.Close()
	u.Bases = []model.BaseRef{}
	for rows.Next() {
		var b model.BaseRef
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return fmt.Errorf("scanning base: %w", err)
		}
		u.Bases = append(u.Bases, b)
	}
	return rows.Err()
}

// LoadIdentity resolves a user ID to the identity used for access checks.
// It returns nil if the user no longer exists.
func LoadIdentity(ctx context.Context, db *sql.DB, userID string) (*model.Identity, error) {
	u, err := GetUser(ctx, db, userID)
	if err != nil || u == nil {
		return nil, err
	}
	return IdentityOf(u), nil
}

// IdentityOf builds an identity from a loaded user.
func IdentityOf(u *model.User) *model.Identity {
	id := &model.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    model.NewRoleSet(u.Roles...),
		Bases:    make([]string, 0, len(u.Bases)),
	}
	for _, b := range u.Bases {
		id.Bases = append(id.Bases, b.ID)
	}
	return id
}

// ListUsers returns users authorized for at least one base in scope,
// ordered by full name. An unrestricted scope returns every user.
func ListUsers(ctx context.Context, db *sql.DB, scope access.Scope) ([]model.User, error) {
	query := userSelect
	var args []any
	if !scope.IsUnrestricted() {
		clause, a := scope.Predicate("ub.base_id")
		query += ` WHERE id IN (SELECT ub.user_id FROM user_bases ub WHERE ` + clause + `)`
		args = a
	}
	query += ` ORDER BY full_name, username`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProfile changes a user's full name and email. Empty values are kept.
func UpdateProfile(ctx context.Context, db *sql.DB, id, fullName, email string, entry *model.AuditEntry) (*model.User, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET full_name = COALESCE(NULLIF(?, ''), full_name),
		                  email = COALESCE(NULLIF(?, ''), email),
		                  updated_at = ?
		 WHERE id = ?`,
		fullName, email, now(), id,
	)
	if isUniqueViolation(err) {
		return nil, model.Conflict("email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.NotFound("user")
	}

	if entry != nil {
		details := map[string]any{}
		if fullName != "" {
			details["fullName"] = fullName
		}
		if email != "" {
			details["email"] = email
		}
		entry.Details = details
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return GetUser(ctx, db, id)
}

// UpdateUserPassword updates a user's password hash. entry, when non-nil,
// is written in the same transaction.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string, entry *model.AuditEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NotFound("user")
	}

	if entry != nil {
		if err := InsertAudit(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing password: %w", err)
	}
	return nil
}

// GrantBase authorizes a user for a base.
func GrantBase(ctx context.Context, db *sql.DB, userID, baseID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_bases (user_id, base_id) VALUES (?, ?)`, userID, baseID,
	)
	if err != nil {
		return fmt.Errorf("granting base: %w", err)
	}
	return nil
}
