package cli

import (
	"time"

	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var pruneOlderThan time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete stored price samples older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Prune(cmd.Context(), app.PruneOptions{OlderThan: pruneOlderThan})
	},
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Age cutoff, e.g. 720h (defaults to database.retention)")
}
