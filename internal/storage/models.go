package storage

import (
	"time"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/quote"
)

// SourceLatest marks samples recorded by a live monitoring session.
const SourceLatest = "latest"

// Sample is one persisted price observation. Source is "latest" for live
// polls or the timeseries timestep ("5m", "1h", ...) for backfilled rows.
type Sample struct {
	ID         int64
	SessionID  *string
	ItemID     int
	ItemName   string
	Source     string
	SampledAt  time.Time
	Low        *int64
	High       *int64
	LowVolume  *int64
	HighVolume *int64
	CreatedAt  time.Time
}

// SampleFromQuote converts a live quote into a sample row.
func SampleFromQuote(sessionID, itemName string, q quote.Quote) Sample {
	s := Sample{
		ItemID:    q.ItemID,
		ItemName:  itemName,
		Source:    SourceLatest,
		SampledAt: q.FetchedAt,
		Low:       q.Low,
		High:      q.High,
	}
	if sessionID != "" {
		s.SessionID = &sessionID
	}
	if s.SampledAt.IsZero() {
		s.SampledAt = time.Now().UTC()
	}
	return s
}

// SampleFromPoint converts a timeseries bucket into a sample row.
func SampleFromPoint(itemName string, p quote.Point) Sample {
	lowVol, highVol := p.LowVolume, p.HighVolume
	return Sample{
		ItemID:     p.ItemID,
		ItemName:   itemName,
		Source:     p.Timestep,
		SampledAt:  p.Timestamp,
		Low:        p.AvgLow,
		High:       p.AvgHigh,
		LowVolume:  &lowVol,
		HighVolume: &highVol,
	}
}

// AlertRecord captures an emitted alert for auditing.
type AlertRecord struct {
	ID        int64
	SessionID string
	ItemID    int
	ItemName  string
	Rule      string
	Direction string
	Target    int64
	Price     int64
	Channels  []string
	CreatedAt time.Time
}

// AlertFromNotification converts a delivered notification into an audit row.
func AlertFromNotification(note alerting.Notification, channels []string) AlertRecord {
	return AlertRecord{
		SessionID: note.SessionID,
		ItemID:    note.ItemID,
		ItemName:  note.ItemName,
		Rule:      note.Rule.Name,
		Direction: string(note.Rule.Direction),
		Target:    note.Rule.Target,
		Price:     note.Price,
		Channels:  channels,
		CreatedAt: note.FiredAt,
	}
}
