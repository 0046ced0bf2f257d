package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ge-price-monitor/internal/app"
	"ge-price-monitor/internal/config"
	"ge-price-monitor/internal/logging"
	"ge-price-monitor/internal/quote"
)

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:           "gewatch",
	Short:         "Watch Grand Exchange prices and alert on thresholds",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(iconCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

// itemName joins positional args so unquoted multi-word names work.
func itemName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// coinFlag parses an optional coin amount flag; empty means unset.
func coinFlag(name, value string) (*int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	v, err := quote.ParseCoins(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &v, nil
}
