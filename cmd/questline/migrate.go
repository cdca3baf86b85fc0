package main

import (
	"github.com/spf13/cobra"

	"github.com/questline/questline/adapters/postgres"
	"github.com/questline/questline/internal/config"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending schema migrations against the configured PostgreSQL database.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(cfg.Postgres.URL); err != nil {
		return err
	}

	cmd.Println("Migrations completed")
	return nil
}
