package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL schema",
	Long: `Apply the schema file to DATABASE_URL.

The file is idempotent and runs as a single batch.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFile, "file", "migrations/migrations.sql", "schema file")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sqlBytes, err := os.ReadFile(migrateFile)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("applying migrations", zap.String("file", migrateFile))
	if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}
