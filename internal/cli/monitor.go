package cli

import (
	"time"

	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var (
	monitorAlertLow  string
	monitorAlertHigh string
	monitorBuyBelow  string
	monitorSellAbove string
	monitorInterval  time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <item name>",
	Short: "Poll an item's price and notify when a threshold is crossed",
	Long: `Poll an item's price on a fixed interval until interrupted (Ctrl+C).

Thresholds accept plain numbers, thousands separators and k/m/b suffixes.
  --alert-low   low (instant-sell) price at or below the value
  --alert-high  high (instant-buy) price at or above the value
  --buy-below   high (instant-buy) price at or below the value
  --sell-above  low (instant-sell) price at or above the value

Each threshold notifies once per crossing and re-arms when the price moves back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := monitorOptions(itemName(args))
		if err != nil {
			return err
		}
		opts.Interval = monitorInterval
		return getApp().Monitor(cmd.Context(), opts)
	},
}

func init() {
	addThresholdFlags(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Polling interval (defaults to scheduler.interval)")
}

func addThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&monitorAlertLow, "alert-low", "", "Alert when the low price drops to this value")
	cmd.Flags().StringVar(&monitorAlertHigh, "alert-high", "", "Alert when the high price rises to this value")
	cmd.Flags().StringVar(&monitorBuyBelow, "buy-below", "", "Alert when the instant-buy price drops to this value")
	cmd.Flags().StringVar(&monitorSellAbove, "sell-above", "", "Alert when the instant-sell price rises to this value")
}

func monitorOptions(item string) (app.MonitorOptions, error) {
	opts := app.MonitorOptions{Item: item}

	var err error
	if opts.AlertLow, err = coinFlag("alert-low", monitorAlertLow); err != nil {
		return opts, err
	}
	if opts.AlertHigh, err = coinFlag("alert-high", monitorAlertHigh); err != nil {
		return opts, err
	}
	if opts.BuyBelow, err = coinFlag("buy-below", monitorBuyBelow); err != nil {
		return opts, err
	}
	if opts.SellAbove, err = coinFlag("sell-above", monitorSellAbove); err != nil {
		return opts, err
	}
	return opts, nil
}
