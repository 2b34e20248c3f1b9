package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/erazemk/armory/internal/api"
	"github.com/erazemk/armory/internal/audit"
	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/inventory"
	"github.com/erazemk/armory/internal/store"
)

const tokenPurgeInterval = time.Hour

type serveCmd struct {
	common
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API server" }
func (*serveCmd) Usage() string {
	return `armory serve [-config <file>] [-db <path>] [-addr <host:port>] [-log <path>]

  Opens (and if needed creates) the database and serves the JSON API until
  SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.addr, "addr", "", "listen address (overrides server.addr)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, closeLog, err := c.load()
	if err != nil {
		return fail(err)
	}
	defer closeLog()
	if c.addr != "" {
		cfg.Server.Addr = c.addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	secret := cfg.JWT.Secret
	if secret == "" {
		// Generated on first run and kept in the database.
		if secret, err = store.GetJWTSecret(ctx, database); err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			return subcommands.ExitFailure
		}
	}

	hub := audit.NewHub()
	recorder := audit.NewRecorder(database, hub, cfg.Audit.QueueSize)
	defer recorder.Close()

	router := api.NewRouter(api.Deps{
		Auth: &auth.Service{
			DB:     database,
			Tokens: auth.NewIssuer(secret, cfg.JWT.Expiry),
			Audit:  recorder,
		},
		Inventory: inventory.New(database, recorder, cfg.SiblingPolicy()),
		Hub:       hub,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go purgeRevokedTokens(ctx, database)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "missing_sibling", cfg.SiblingPolicy())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return subcommands.ExitFailure
	}

	slog.Info("server stopped, flushing audit queue and closing database")
	return subcommands.ExitSuccess
}

// purgeRevokedTokens drops expired revocations until ctx is done.
func purgeRevokedTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeRevokedTokens(ctx, database)
			if err != nil {
				slog.Error("purging revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
