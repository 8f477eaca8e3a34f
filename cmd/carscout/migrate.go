package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carscout/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the cache database and show its status",
	Long: `Migrate opens the cache database, creating the cache table if it is missing
and adding columns introduced since the file was written. Databases from
older releases keep their rows; their mileage range starts at 0.

The same upgrade runs automatically on startup, so this command is only
needed to inspect or prepare a database ahead of time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath := cfg.DatabasePath

		db, err := database.NewDatabase(dbPath, log)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer db.Close()

		status, err := db.Status(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Database: %s\n", dbPath)
		fmt.Fprintf(w, "Columns:  %s\n", strings.Join(status.Columns, ", "))
		fmt.Fprintf(w, "Entries:  %d\n", status.Entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
