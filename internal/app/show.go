package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ge-price-monitor/internal/quote"
	"ge-price-monitor/internal/storage"
)

// Show prints recent stored samples (and optionally alerts) for an item.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	item, err := a.resolveItem(ctx, opts.Item)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show samples")
	}
	if closeStore != nil {
		defer closeStore()
	}

	samples, err := store.ListRecentSamples(ctx, item.ID, opts.Limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Fprintln(a.Out, "no samples found")
	} else {
		writeSamplesTable(a.Out, samples)
	}

	if !opts.Alerts {
		return nil
	}

	alerts, err := store.ListRecentAlerts(ctx, item.ID, opts.Limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out)
	if len(alerts) == 0 {
		fmt.Fprintln(a.Out, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tRule\tPrice\tTarget\tChannels\tSession")
	for _, rec := range alerts {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.Rule,
			quote.FormatCoins(rec.Price),
			quote.FormatCoins(rec.Target),
			strings.Join(rec.Channels, ","),
			rec.SessionID,
		)
	}
	return writer.Flush()
}

func writeSamplesTable(out io.Writer, samples []storage.Sample) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tSource\tLow\tHigh\tMargin")

	for _, sample := range samples {
		q := quote.Quote{Low: sample.Low, High: sample.High}
		margin := "n/a"
		if m, ok := q.Margin(); ok {
			margin = quote.FormatCoins(m)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			sample.SampledAt.UTC().Format(time.RFC3339),
			sample.Source,
			quote.FormatPrice(sample.Low),
			quote.FormatPrice(sample.High),
			margin,
		)
	}

	writer.Flush()
}
