package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"ge-price-monitor/internal/quote"
	"ge-price-monitor/internal/storage"
)

// Export renders an item's stored history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	item, err := a.resolveItem(ctx, opts.Item)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	samples, err := store.ListSamplesBetween(ctx, item.ID, from, to)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		a.Logger.Info().Str("item", item.Name).Msg("no samples found for export window")
		return nil
	}

	downsampled := downsampleSamples(samples, opts.MaxPoints)
	a.Logger.Info().Int("total", len(samples)).Int("exported", len(downsampled)).Msg("exporting samples")

	if opts.CSVPath != "" {
		if err := writeSamplesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSamplesPNG(opts.PNGPath, item.Name, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleSamples(samples []storage.Sample, max int) []storage.Sample {
	if max <= 0 || len(samples) <= max {
		return samples
	}
	if max == 1 {
		return samples[len(samples)-1:]
	}

	result := make([]storage.Sample, 0, max)
	step := float64(len(samples)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		result = append(result, samples[idx])
	}
	return result
}

func writeSamplesCSV(path string, samples []storage.Sample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"sampled_at", "item_id", "item_name", "source", "low", "high", "margin", "low_volume", "high_volume"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sample := range samples {
		margin := ""
		if m, ok := (quote.Quote{Low: sample.Low, High: sample.High}).Margin(); ok {
			margin = strconv.FormatInt(m, 10)
		}
		record := []string{
			sample.SampledAt.UTC().Format(time.RFC3339),
			strconv.Itoa(sample.ItemID),
			sample.ItemName,
			sample.Source,
			optionalInt(sample.Low),
			optionalInt(sample.High),
			margin,
			optionalInt(sample.LowVolume),
			optionalInt(sample.HighVolume),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeSamplesPNG(path, itemName string, samples []storage.Sample) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var lowX, highX []time.Time
	var low, high []float64
	for _, sample := range samples {
		if sample.Low != nil {
			lowX = append(lowX, sample.SampledAt)
			low = append(low, float64(*sample.Low))
		}
		if sample.High != nil {
			highX = append(highX, sample.SampledAt)
			high = append(high, float64(*sample.High))
		}
	}
	if len(low) < 2 && len(high) < 2 {
		return errors.New("not enough samples to draw a chart")
	}

	coinFormatter := func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return quote.FormatCoins(int64(math.Round(f)))
		}
		return ""
	}

	var series []chart.Series
	if len(low) >= 2 {
		series = append(series, chart.TimeSeries{Name: "Low (instant sell)", XValues: lowX, YValues: low})
	}
	if len(high) >= 2 {
		series = append(series, chart.TimeSeries{Name: "High (instant buy)", XValues: highX, YValues: high})
	}

	graph := chart.Chart{
		Title:  itemName,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (coins)",
			ValueFormatter: coinFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func optionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
