package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates the tables and change queue triggers.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the sync tables and change queue triggers",
	Long: `Creates 'synced_rows' and 'sync_outbox' and installs the triggers that
append store-originated writes to the change queue. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logg.Sync()

		db, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		if err := migrateAll(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := verifySchema(db); err != nil {
			return err
		}

		logg.Info("Migration complete", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
