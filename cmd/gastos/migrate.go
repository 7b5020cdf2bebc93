package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/config"
	"github.com/Veraticus/gastos/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the expense database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, _ := cmd.Flags().GetBool("status")
			dbPath := config.DatabasePath(viper.GetViper())

			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}

			out := cmd.OutOrStdout()
			if status {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%s: schema version %d of %d", dbPath, current, storage.ExpectedSchemaVersion)))
				return nil
			}

			slog.Info("Running database migrations", "database", dbPath, "from_version", current)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().Bool("status", false, "show the schema version without migrating")
	return cmd
}
