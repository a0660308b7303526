package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/storage"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

A new database is seeded with the default income and expense categories.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := openStorage(settings.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			before, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status {
				fmt.Fprintln(out, cli.RenderBox("Database Migration Status", fmt.Sprintf(
					"Database: %s\nCurrent version: %d\nLatest version: %d",
					settings.DatabasePath, before, storage.ExpectedSchemaVersion)))
				return nil
			}

			slog.Info("Running database migrations", "database", settings.DatabasePath, "from", before)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			after, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if after == before {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database already at version %d", after)))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database migrated from version %d to %d", before, after)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show current migration status without applying changes")

	return cmd
}
