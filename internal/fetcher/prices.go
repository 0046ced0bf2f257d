package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/logging"
	"ge-price-monitor/internal/quote"
)

const (
	mappingPath    = "/mapping"
	latestPath     = "/latest"
	timeseriesPath = "/timeseries"

	defaultUserAgent = "gewatch/1.0 (grand exchange price monitor)"
)

var validTimesteps = map[string]bool{"5m": true, "1h": true, "6h": true, "24h": true}

// PricesOptions parameterise the real-time prices client.
type PricesOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Prices talks to the real-time prices API.
type Prices struct {
	client *resty.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewPrices constructs a prices client.
func NewPrices(opts PricesOptions, logger zerolog.Logger) *Prices {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://prices.runescape.wiki/api/v1/osrs"
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "application/json")

	return &Prices{
		client: client,
		logger: logging.Component(logger, "prices_fetcher"),
		now:    time.Now,
	}
}

// FetchMapping downloads the full item mapping.
func (p *Prices) FetchMapping(ctx context.Context) ([]catalog.Item, error) {
	body, err := p.get(ctx, mappingPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch mapping: %w", err)
	}

	var items []catalog.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}

	p.logger.Debug().Int("items", len(items)).Msg("mapping loaded")
	return items, nil
}

// FetchQuote retrieves the latest quote for one item.
func (p *Prices) FetchQuote(ctx context.Context, itemID int) (quote.Quote, error) {
	body, err := p.get(ctx, latestPath, map[string]string{"id": strconv.Itoa(itemID)})
	if err != nil {
		return quote.Quote{}, fmt.Errorf("fetch latest: %w", err)
	}

	var res latestResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return quote.Quote{}, fmt.Errorf("decode latest: %w", err)
	}

	entry, ok := res.Data[strconv.Itoa(itemID)]
	if !ok {
		return quote.Quote{}, ErrPriceUnavailable
	}

	q := quote.Quote{
		ItemID:    itemID,
		Low:       entry.Low,
		High:      entry.High,
		LowTime:   unixPtr(entry.LowTime),
		HighTime:  unixPtr(entry.HighTime),
		FetchedAt: p.now().UTC(),
	}
	if !q.HasData() {
		return quote.Quote{}, ErrPriceUnavailable
	}
	return q, nil
}

// FetchTimeseries retrieves averaged prices for an item at the given timestep.
func (p *Prices) FetchTimeseries(ctx context.Context, itemID int, timestep string) ([]quote.Point, error) {
	if !validTimesteps[timestep] {
		return nil, fmt.Errorf("unsupported timestep %q", timestep)
	}

	body, err := p.get(ctx, timeseriesPath, map[string]string{
		"id":       strconv.Itoa(itemID),
		"timestep": timestep,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timeseries: %w", err)
	}

	var res timeseriesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode timeseries: %w", err)
	}

	points := make([]quote.Point, 0, len(res.Data))
	for _, row := range res.Data {
		points = append(points, quote.Point{
			ItemID:     itemID,
			Timestamp:  time.Unix(row.Timestamp, 0).UTC(),
			Timestep:   timestep,
			AvgHigh:    row.AvgHighPrice,
			AvgLow:     row.AvgLowPrice,
			HighVolume: row.HighPriceVolume,
			LowVolume:  row.LowPriceVolume,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

func (p *Prices) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	req := p.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, parseHTTPError(resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}

type latestEntry struct {
	High     *int64 `json:"high"`
	HighTime *int64 `json:"highTime"`
	Low      *int64 `json:"low"`
	LowTime  *int64 `json:"lowTime"`
}

type latestResponse struct {
	Data map[string]latestEntry `json:"data"`
}

type timeseriesRow struct {
	Timestamp       int64  `json:"timestamp"`
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	HighPriceVolume int64  `json:"highPriceVolume"`
	LowPriceVolume  int64  `json:"lowPriceVolume"`
}

type timeseriesResponse struct {
	Data   []timeseriesRow `json:"data"`
	ItemID int             `json:"itemId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Error != "" {
			return fmt.Errorf("prices api error (%d): %s", status, apiErr.Error)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("prices api error (%d): %s", status, apiErr.Message)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("prices api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("prices api error (%d)", status)
}

func unixPtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}

var _ PriceFetcher = (*Prices)(nil)
var _ TimeseriesFetcher = (*Prices)(nil)
