package cli

import (
	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var (
	backfillTimestep string
	backfillDryRun   bool
)

var backfillCmd = &cobra.Command{
	Use:   "backfill <item name>",
	Short: "Import an item's averaged price timeseries into history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.BackfillOptions{
			Item:     itemName(args),
			Timestep: backfillTimestep,
			DryRun:   backfillDryRun,
		}

		return getApp().Backfill(cmd.Context(), opts)
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillTimestep, "timestep", "5m", "Timeseries resolution (5m, 1h, 6h, 24h)")
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Fetch and count without writing to storage")
}
