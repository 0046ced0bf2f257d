package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/fetcher"
	"ge-price-monitor/internal/quote"
)

// Search prints catalog names containing the query.
func (a *App) Search(ctx context.Context, opts SearchOptions) error {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	names := cat.Search(opts.Query, opts.Limit)
	if len(names) == 0 {
		fmt.Fprintln(a.Out, "no matching items")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(a.Out, name)
	}
	return nil
}

// Price resolves an item and prints its current quote once.
func (a *App) Price(ctx context.Context, name string) error {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	item, err := cat.Lookup(name)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return fmt.Errorf("item not found! select a valid item: %w", err)
		}
		return err
	}

	q, err := a.newPrices().FetchQuote(ctx, item.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, quote.Render(item.Name, q))
	if line, ok := quote.RenderMargin(q); ok {
		fmt.Fprintln(a.Out, line)
	}
	return nil
}

// Icon downloads an item's icon to opts.OutPath (or <Item_name>.<ext>).
func (a *App) Icon(ctx context.Context, opts IconOptions) error {
	item, err := a.resolveItem(ctx, opts.Item)
	if err != nil {
		return err
	}

	icon, err := a.newIcons().FetchIcon(ctx, item.Name)
	if err != nil {
		return err
	}

	path := opts.OutPath
	if path == "" {
		path = fetcher.PageTitle(item.Name) + icon.Ext()
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, icon.Data, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}

	fmt.Fprintln(a.Out, path)
	return nil
}

// fetchIconFile stores the item's icon in a temp file for notifications.
// Failures are logged and yield an empty path.
func (a *App) fetchIconFile(ctx context.Context, item catalog.Item) (string, func()) {
	noop := func() {}
	if !a.Config.Alerting.Desktop.WithIcon {
		return "", noop
	}

	icon, err := a.newIcons().FetchIcon(ctx, item.Name)
	if err != nil {
		a.Logger.Warn().Err(err).Str("item", item.Name).Msg("no icon for notifications")
		return "", noop
	}

	file, err := os.CreateTemp("", "gewatch-*"+icon.Ext())
	if err != nil {
		a.Logger.Warn().Err(err).Msg("could not create icon file")
		return "", noop
	}
	path := file.Name()
	_, writeErr := file.Write(icon.Data)
	closeErr := file.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(path)
		a.Logger.Warn().Err(errors.Join(writeErr, closeErr)).Msg("could not write icon file")
		return "", noop
	}
	return filepath.Clean(path), func() { _ = os.Remove(path) }
}
