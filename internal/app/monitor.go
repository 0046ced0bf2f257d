package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"slices"
	"syscall"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/monitor"
)

// Monitor runs a monitoring session until SIGINT/SIGTERM raises the stop flag.
func (a *App) Monitor(ctx context.Context, opts MonitorOptions) error {
	rules := opts.Rules()
	if len(rules) == 0 {
		return fmt.Errorf("enter at least a low or high price: %w", alerting.ErrNoRules)
	}

	item, err := a.resolveItem(ctx, opts.Item)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Debug().Msg("database.dsn not configured; history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	notifier, channels := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("no alert channels configured; alerts will only be printed")
	}

	iconPath, removeIcon := "", func() {}
	if slices.Contains(channels, "desktop") {
		iconPath, removeIcon = a.fetchIconFile(ctx, item)
	}
	defer removeIcon()

	deps := monitor.Deps{
		Prices:   a.newPrices(),
		Notifier: notifier,
		Channels: channels,
		Reporter: monitor.NewWriterReporter(a.Out, a.Err),
	}
	if store != nil {
		deps.Samples = store
		deps.Alerts = store
	}

	session, err := monitor.NewSession(item, monitor.Options{
		Rules:        rules,
		Interval:     a.Config.ResolveInterval(opts.Interval),
		StartupDelay: a.Config.Scheduler.StartupDelay,
		IconPath:     iconPath,
		Timeout:      a.Config.Alerting.Desktop.Timeout,
	}, deps, a.Logger)
	if err != nil {
		return err
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-sigCtx.Done()
		session.Stop()
	}()

	err = session.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitoring terminated with error")
		return err
	}
	return nil
}
