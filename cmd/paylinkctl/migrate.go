package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paylink.dev/app/internal/schema"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			if err := schema.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ schema migrated (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
