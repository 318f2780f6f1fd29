package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helios-ops/helios/internal/core/config"
	"github.com/helios-ops/helios/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

// resolveDBURL prefers the --db-url flag over the config file.
func resolveDBURL() (string, error) {
	if dbURL != "" {
		return dbURL, nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.DatabaseURL, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	log := newLogger()

	url, err := resolveDBURL()
	if err != nil {
		return err
	}
	conn, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	if err := db.MigrateUp(conn); err != nil {
		return err
	}

	log.Info().Msg("migrations applied")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	url, err := resolveDBURL()
	if err != nil {
		return err
	}
	conn, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	statuses, err := db.MigrateStatus(conn)
	if err != nil {
		return err
	}

	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%-40s %s\n", s.ID, state)
	}
	return nil
}
