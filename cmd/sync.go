package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// syncCmd is the parent command for one-shot sync ticks.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync tick and print its result",
	Long: `Runs one tick of a sync direction outside the scheduler.

Examples:
  # Pull grid edits into the database
  sync grid-to-store

  # Push pending database changes to the grid
  sync store-to-grid`,
}

var gridToStoreCmd = &cobra.Command{
	Use:   "grid-to-store",
	Short: "Reconcile the grid into the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(func(ctx context.Context, e *engine) (any, error) {
			return e.gridToStore.TryRun(ctx)
		})
	},
}

var storeToGridCmd = &cobra.Command{
	Use:   "store-to-grid",
	Short: "Drain pending database changes into the grid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(func(ctx context.Context, e *engine) (any, error) {
			return e.storeToGrid.TryRun(ctx)
		})
	},
}

func init() {
	syncCmd.AddCommand(gridToStoreCmd)
	syncCmd.AddCommand(storeToGridCmd)
	RootCmd.AddCommand(syncCmd)
}

func runOnce(tick func(ctx context.Context, e *engine) (any, error)) error {
	ctx := context.Background()

	cfg, logg, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logg.Sync()

	e, err := newEngine(ctx, cfg, logg)
	if err != nil {
		return err
	}

	res, err := tick(ctx, e)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to print result: %w", err)
	}
	return nil
}
