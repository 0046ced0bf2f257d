package app

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/config"
	"ge-price-monitor/internal/fetcher"
	"ge-price-monitor/internal/logging"
	"ge-price-monitor/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	Err    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logging.Component(logger, "app"),
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

func (a *App) newPrices() *fetcher.Prices {
	return fetcher.NewPrices(fetcher.PricesOptions{
		BaseURL:   a.Config.Prices.BaseURL,
		Timeout:   a.Config.Prices.RequestTimeout,
		UserAgent: a.Config.Prices.UserAgent,
	}, a.Logger)
}

func (a *App) newIcons() *fetcher.WikiIcons {
	return fetcher.NewWikiIcons(fetcher.IconOptions{
		APIURL:    a.Config.Wiki.APIURL,
		ThumbSize: a.Config.Wiki.ThumbSize,
		Timeout:   a.Config.Wiki.RequestTimeout,
		UserAgent: a.Config.Prices.UserAgent,
	}, a.Logger)
}

func (a *App) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := catalog.Load(ctx, a.newPrices())
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Int("items", cat.Len()).Msg("catalog loaded")
	return cat, nil
}

func (a *App) resolveItem(ctx context.Context, name string) (catalog.Item, error) {
	cat, err := a.loadCatalog(ctx)
	if err != nil {
		return catalog.Item{}, err
	}
	return cat.Lookup(name)
}

// newNotifier builds the configured channels. The returned names are the
// channels that were actually wired.
func (a *App) newNotifier() (alerting.Notifier, []string) {
	var multi alerting.Multi
	var wired []string

	for _, ch := range a.Config.Alerting.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "desktop":
			multi = append(multi, alerting.NewDesktopNotifier(a.Config.Alerting.Desktop.Timeout, a.Logger))
			wired = append(wired, "desktop")
		case "log":
			multi = append(multi, alerting.NewLogNotifier(a.Logger))
			wired = append(wired, "log")
		case "telegram":
			cfg := a.Config.Alerting.Telegram
			if !cfg.Enabled {
				a.Logger.Warn().Msg("telegram channel listed but alerting.telegram.enabled is false")
				continue
			}
			multi = append(multi, alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
			wired = append(wired, "telegram")
		}
	}

	if len(multi) == 0 {
		return nil, nil
	}
	return multi, wired
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// SearchOptions configure the search command.
type SearchOptions struct {
	Query string
	Limit int
}

// MonitorOptions configure a monitoring session. Nil thresholds are unset.
type MonitorOptions struct {
	Item      string
	AlertLow  *int64
	AlertHigh *int64
	BuyBelow  *int64
	SellAbove *int64
	Interval  time.Duration
}

// Rules converts the set thresholds into alert rules.
func (o MonitorOptions) Rules() []alerting.Rule {
	var rules []alerting.Rule
	if o.AlertLow != nil {
		rules = append(rules, alerting.LowAlert(*o.AlertLow))
	}
	if o.AlertHigh != nil {
		rules = append(rules, alerting.HighAlert(*o.AlertHigh))
	}
	if o.BuyBelow != nil {
		rules = append(rules, alerting.BuyBelow(*o.BuyBelow))
	}
	if o.SellAbove != nil {
		rules = append(rules, alerting.SellAbove(*o.SellAbove))
	}
	return rules
}

// IconOptions configure the icon command.
type IconOptions struct {
	Item    string
	OutPath string
}

// ExportOptions hold parameters for exporting stored history.
type ExportOptions struct {
	Item      string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Item   string
	Limit  int
	Alerts bool
}

// BackfillOptions configure the backfill job.
type BackfillOptions struct {
	Item     string
	Timestep string
	DryRun   bool
}

// PruneOptions configure history retention. Zero OlderThan falls back to
// database.retention.
type PruneOptions struct {
	OlderThan time.Duration
}

// SimulateOptions configure a one-off alert simulation.
type SimulateOptions struct {
	Monitor MonitorOptions
	Low     *int64
	High    *int64
}
