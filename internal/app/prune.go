package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ge-price-monitor/internal/storage"
)

// Prune deletes stored samples older than the retention window.
func (a *App) Prune(ctx context.Context, opts PruneOptions) error {
	retention := a.Config.ResolveRetention(opts.OlderThan)
	if retention <= 0 {
		return errors.New("--older-than or database.retention must be set")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn not configured; nothing to prune")
	}
	if closeStore != nil {
		defer closeStore()
	}

	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := pruneSamples(ctx, store, cutoff)
	if err != nil {
		return err
	}

	a.Logger.Info().Time("cutoff", cutoff).Int64("deleted", deleted).Msg("history pruned")
	fmt.Fprintf(a.Out, "pruned %d samples older than %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}

func pruneSamples(ctx context.Context, store storage.SampleStore, cutoff time.Time) (int64, error) {
	deleted, err := store.DeleteSamplesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune samples: %w", err)
	}
	return deleted, nil
}
