package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/google/subcommands"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

type initCmd struct {
	common
	user  string
	email string
	reset bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the database schema and an admin account" }
func (*initCmd) Usage() string {
	return `armory init [-config <file>] [-db <path>] [-user <name>] [-email <addr>] [-reset]

  Creates the schema if missing and an Admin account with a generated
  password. With -reset, an existing admin account gets a new password.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.user, "user", "admin", "admin username")
	f.StringVar(&c.email, "email", "admin@localhost", "admin email")
	f.BoolVar(&c.reset, "reset", false, "generate a new password if the admin already exists")
}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, closeLog, err := c.load()
	if err != nil {
		return fail(err)
	}
	defer closeLog()

	database, err := openDatabase(ctx, cfg.Database.Path)
	if err != nil {
		return fail(err)
	}
	defer database.Close()

	existing, err := store.GetUserByUsername(ctx, database, c.user)
	if err != nil {
		return fail(err)
	}
	if existing != nil && !c.reset {
		fmt.Printf("User %q already exists. Use -reset to generate a new password.\n", c.user)
		return subcommands.ExitSuccess
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	if existing != nil {
		if err := store.UpdateUserPassword(ctx, database, existing.ID, hash, nil); err != nil {
			return fail(err)
		}
		slog.Info("admin password reset", "user", c.user)
	} else {
		if _, err := store.CreateUser(ctx, database, store.NewUser{
			Username:     c.user,
			Email:        c.email,
			FullName:     "System Administrator",
			PasswordHash: hash,
			Roles:        []model.Role{model.RoleAdmin},
		}); err != nil {
			return fail(fmt.Errorf("creating admin user: %w", err))
		}
		slog.Info("admin account created", "user", c.user)
	}

	printInitResult(cfg.Database.Path, c.user, password)
	return subcommands.ExitSuccess
}

// printInitResult prints the admin credentials to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
