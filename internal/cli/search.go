package cli

import (
	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List item names containing the query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Search(cmd.Context(), app.SearchOptions{
			Query: itemName(args),
			Limit: searchLimit,
		})
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 25, "Maximum names to print (0 for all)")
}
