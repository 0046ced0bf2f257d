package app

import (
	"context"
	"errors"
	"fmt"

	"ge-price-monitor/internal/storage"
)

// Backfill imports an item's averaged price timeseries into history.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	timestep := opts.Timestep
	if timestep == "" {
		timestep = "5m"
	}

	item, err := a.resolveItem(ctx, opts.Item)
	if err != nil {
		return err
	}

	var store *storage.Store
	if opts.DryRun {
		a.Logger.Warn().Msg("backfill dry-run: nothing will be written")
		// Stored counts are informational here; an unreachable database is not fatal.
		if a.Config.Database.DSN != "" {
			var closeStore func()
			store, closeStore, err = a.openStore(ctx)
			if err != nil {
				a.Logger.Warn().Err(err).Msg("history unavailable; stored counts omitted")
				store = nil
			} else if closeStore != nil {
				defer closeStore()
			}
		}
	} else {
		var closeStore func()
		store, closeStore, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database.dsn not configured; cannot backfill")
		}
		if closeStore != nil {
			defer closeStore()
		}
	}

	points, err := a.newPrices().FetchTimeseries(ctx, item.ID, timestep)
	if err != nil {
		return err
	}

	samples := make([]storage.Sample, 0, len(points))
	for _, p := range points {
		if p.AvgLow == nil && p.AvgHigh == nil {
			continue
		}
		samples = append(samples, storage.SampleFromPoint(item.Name, p))
	}

	res := backfillResult{Fetched: len(points), Usable: len(samples)}
	if store != nil {
		if err := writeBackfill(ctx, store, item.ID, samples, opts.DryRun, &res); err != nil {
			return err
		}
	}

	a.Logger.Info().
		Str("item", item.Name).
		Str("timestep", timestep).
		Int("fetched", res.Fetched).
		Int("usable", res.Usable).
		Int("written", res.Written).
		Bool("dry_run", opts.DryRun).
		Msg("backfill complete")
	fmt.Fprintf(a.Out, "%s: %s\n", item.Name, res)
	return nil
}

// backfillResult summarises one backfill. Stored counts are set only when
// history is available.
type backfillResult struct {
	Fetched   int
	Usable    int
	Written   int
	HasCounts bool
	Before    int64
	After     int64
}

func (r backfillResult) String() string {
	line := fmt.Sprintf("%d points fetched, %d usable, %d written", r.Fetched, r.Usable, r.Written)
	if r.HasCounts {
		line += fmt.Sprintf(" (stored samples: %d -> %d)", r.Before, r.After)
	}
	return line
}

// writeBackfill upserts samples unless dryRun and records the stored sample
// count around the write.
func writeBackfill(ctx context.Context, store storage.SampleStore, itemID int, samples []storage.Sample, dryRun bool, res *backfillResult) error {
	before, err := store.CountSamples(ctx, itemID)
	if err != nil {
		return err
	}

	after := before
	if !dryRun {
		written, err := store.UpsertSamples(ctx, samples)
		if err != nil {
			return err
		}
		res.Written = written

		if after, err = store.CountSamples(ctx, itemID); err != nil {
			return err
		}
	}

	res.HasCounts = true
	res.Before = before
	res.After = after
	return nil
}
