package fetcher

import (
	"context"
	"errors"

	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/quote"
)

var (
	// ErrPriceUnavailable is returned when the index has no entry for an item.
	ErrPriceUnavailable = errors.New("price data unavailable")
	// ErrIconNotFound is returned when the wiki has no thumbnail for an item.
	ErrIconNotFound = errors.New("icon not found")
)

// PriceFetcher retrieves the latest low/high quote for an item.
type PriceFetcher interface {
	FetchQuote(ctx context.Context, itemID int) (quote.Quote, error)
}

// TimeseriesFetcher retrieves averaged historical prices for an item.
type TimeseriesFetcher interface {
	FetchTimeseries(ctx context.Context, itemID int, timestep string) ([]quote.Point, error)
}

// IconFetcher retrieves an item's icon image.
type IconFetcher interface {
	FetchIcon(ctx context.Context, itemName string) (Icon, error)
}

var _ catalog.Source = (*Prices)(nil)
