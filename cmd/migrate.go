package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/database/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	pool, applied, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if len(applied) == 0 {
		fmt.Println("Database is up to date")
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}

	all, err := pool.MigrationsApplied(ctx)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	rows := make([][]string, 0, len(all))
	for _, name := range all {
		rows = append(rows, []string{name})
	}
	fmt.Println(renderTable([]string{"Migration"}, rows, nil))
	return nil
}
