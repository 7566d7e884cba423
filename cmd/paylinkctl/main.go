// Command paylinkctl is the operator tool: schema migration, seed data and
// webhook replay against a running server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"paylink.dev/app/internal/config"
	"paylink.dev/app/internal/database"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "paylinkctl",
		Short:         "Operator tool for the payment link service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(webhookCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func openDB() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, logger())
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
