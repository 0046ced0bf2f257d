package cli

import (
	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var (
	simulateLow  string
	simulateHigh string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert <item name>",
	Short: "Evaluate thresholds against given prices and send any alerts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		monitorOpts, err := monitorOptions(itemName(args))
		if err != nil {
			return err
		}
		low, err := coinFlag("low", simulateLow)
		if err != nil {
			return err
		}
		high, err := coinFlag("high", simulateHigh)
		if err != nil {
			return err
		}

		return getApp().SimulateAlert(cmd.Context(), app.SimulateOptions{
			Monitor: monitorOpts,
			Low:     low,
			High:    high,
		})
	},
}

func init() {
	addThresholdFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&simulateLow, "low", "", "Simulated low (instant-sell) price")
	simulateCmd.Flags().StringVar(&simulateHigh, "high", "", "Simulated high (instant-buy) price")
}
