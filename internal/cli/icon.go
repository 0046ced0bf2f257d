package cli

import (
	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
)

var iconOut string

var iconCmd = &cobra.Command{
	Use:   "icon <item name>",
	Short: "Download an item's icon from the wiki",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Icon(cmd.Context(), app.IconOptions{
			Item:    itemName(args),
			OutPath: iconOut,
		})
	},
}

func init() {
	iconCmd.Flags().StringVarP(&iconOut, "out", "o", "", "Output file (defaults to <Item_name>.png)")
}
