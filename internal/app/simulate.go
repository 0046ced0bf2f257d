package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/fetcher"
	"ge-price-monitor/internal/monitor"
	"ge-price-monitor/internal/quote"
)

// SimulateAlert runs one monitoring cycle against fixed prices through the
// configured alert channels.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	if opts.Low == nil && opts.High == nil {
		return errors.New("--low or --high must be provided")
	}
	rules := opts.Monitor.Rules()
	if len(rules) == 0 {
		return fmt.Errorf("enter at least a low or high price: %w", alerting.ErrNoRules)
	}

	notifier, channels := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channels configured")
	}

	item, err := a.resolveItem(ctx, opts.Monitor.Item)
	if err != nil {
		return err
	}

	prices := &staticPriceFetcher{quote: quote.Quote{
		ItemID:    item.ID,
		Low:       opts.Low,
		High:      opts.High,
		FetchedAt: time.Now().UTC(),
	}}

	session, err := monitor.NewSession(item, monitor.Options{
		Rules:   rules,
		Timeout: a.Config.Alerting.Desktop.Timeout,
	}, monitor.Deps{
		Prices:   prices,
		Notifier: notifier,
		Channels: channels,
		Reporter: monitor.NewWriterReporter(a.Out, a.Err),
	}, a.Logger)
	if err != nil {
		return err
	}

	if err := session.Poll(ctx, time.Now().UTC()); err != nil {
		return err
	}
	if session.Stats().Alerts == 0 {
		fmt.Fprintln(a.Out, "no threshold crossed")
	}
	return nil
}

type staticPriceFetcher struct {
	quote quote.Quote
}

func (s *staticPriceFetcher) FetchQuote(ctx context.Context, itemID int) (quote.Quote, error) {
	if !s.quote.HasData() {
		return quote.Quote{}, fetcher.ErrPriceUnavailable
	}
	return s.quote, nil
}

var _ fetcher.PriceFetcher = (*staticPriceFetcher)(nil)
