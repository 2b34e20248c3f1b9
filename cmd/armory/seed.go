package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/erazemk/armory/internal/seed"
)

type seedCmd struct {
	common
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "load demo bases, assets, users and activity" }
func (*seedCmd) Usage() string {
	return `armory seed [-config <file>] [-db <path>]

  Loads a demo data set into the database. Running it again does nothing.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	res, err := seed.Run(ctx, database)
	if err != nil {
		return fail(err)
	}
	if res.Skipped {
		fmt.Println("Database was already seeded.")
		return subcommands.ExitSuccess
	}

	fmt.Println("Demo accounts:")
	for _, cr := range res.Credentials {
		fmt.Printf("  %-10s %-14s %s\n", cr.Username, cr.Password, cr.Role)
	}
	return subcommands.ExitSuccess
}
