package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/quote"
)

func TestSampleFromQuote(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	q := quote.Quote{ItemID: 4151, Low: quote.Price(10), High: quote.Price(20), FetchedAt: at}

	s := SampleFromQuote("abc", "Abyssal whip", q)
	assert.Equal(t, SourceLatest, s.Source)
	assert.Equal(t, at, s.SampledAt)
	assert.Equal(t, "abc", *s.SessionID)
	assert.Equal(t, int64(20), *s.High)

	s = SampleFromQuote("", "Abyssal whip", quote.Quote{ItemID: 1})
	assert.Nil(t, s.SessionID)
	assert.False(t, s.SampledAt.IsZero())
}

func TestSampleFromPoint(t *testing.T) {
	p := quote.Point{ItemID: 2, Timestamp: time.Unix(1700000000, 0).UTC(), Timestep: "5m", AvgHigh: quote.Price(5), HighVolume: 9}
	s := SampleFromPoint("Cannonball", p)
	assert.Equal(t, "5m", s.Source)
	assert.Nil(t, s.Low)
	assert.Equal(t, int64(9), *s.HighVolume)
	assert.Equal(t, int64(0), *s.LowVolume)
}

func TestAlertFromNotification(t *testing.T) {
	note := alerting.NewNotification("sess", "Cannonball", quote.Quote{ItemID: 2}, alerting.Trigger{Rule: alerting.BuyBelow(180), Price: 170})
	rec := AlertFromNotification(note, []string{"desktop"})
	assert.Equal(t, "buy-below", rec.Rule)
	assert.Equal(t, "at_or_below", rec.Direction)
	assert.Equal(t, int64(180), rec.Target)
	assert.Equal(t, int64(170), rec.Price)
	assert.Equal(t, 2, rec.ItemID)
}

func TestNilStoreNotConfigured(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.True(t, errors.Is(s.InsertSample(ctx, Sample{}), ErrNotConfigured))
	_, err := s.ListRecentSamples(ctx, 1, 10)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	_, err = s.InsertAlert(ctx, AlertRecord{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.True(t, errors.Is(s.Migrate(ctx), ErrNotConfigured))
	s.Close()
}
