// Command armory runs the equipment ledger server and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/erazemk/armory/internal/config"
	"github.com/erazemk/armory/internal/db"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&initCmd{}, "database")
	commander.Register(&seedCmd{}, "database")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// common holds the flags every command accepts. Non-empty flags override the
// loaded configuration.
type common struct {
	configPath string
	dbPath     string
	logPath    string
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file (default: armory.yaml in the working directory, optional)")
	f.StringVar(&c.dbPath, "db", "", "SQLite database path (overrides database.path)")
	f.StringVar(&c.logPath, "log", "", "log file path (overrides log.path)")
}

// load reads the configuration, applies flag overrides and sets up logging.
// The returned cleanup must run before exit.
func (c *common) load() (config.Config, func(), error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if c.dbPath != "" {
		cfg.Database.Path = c.dbPath
	}
	if c.logPath != "" {
		cfg.Log.Path = c.logPath
	}

	cleanup, err := setupLogger(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cleanup, nil
}

// openDatabase opens the database and ensures the schema exists.
func openDatabase(ctx context.Context, path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return subcommands.ExitFailure
}
