package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var (
	showLimit  int
	showAlerts bool
)

var showCmd = &cobra.Command{
	Use:   "show <item name>",
	Short: "Display recent stored price samples for an item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Item:   itemName(args),
			Limit:  showLimit,
			Alerts: showAlerts,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of samples to display")
	showCmd.Flags().BoolVar(&showAlerts, "alerts", false, "Also list recently fired alerts")
}
