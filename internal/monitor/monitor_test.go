package monitor

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/fetcher"
	"ge-price-monitor/internal/quote"
	"ge-price-monitor/internal/storage"
)

type MockPrices struct {
	mock.Mock
}

func (m *MockPrices) FetchQuote(ctx context.Context, itemID int) (quote.Quote, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(quote.Quote), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

type MockSamples struct {
	mock.Mock
	storage.SampleStore
}

func (m *MockSamples) InsertSample(ctx context.Context, sample storage.Sample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

type MockAlerts struct {
	mock.Mock
	storage.AlertStore
}

func (m *MockAlerts) InsertAlert(ctx context.Context, rec storage.AlertRecord) (storage.AlertRecord, error) {
	args := m.Called(ctx, rec)
	return rec, args.Error(0)
}

type captureReporter struct {
	mu       sync.Mutex
	quotes   []quote.Quote
	statuses []string
}

func (c *captureReporter) Quote(_ string, q quote.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, q)
}

func (c *captureReporter) Status(_ Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, msg)
}

var whip = catalog.Item{ID: 4151, Name: "Abyssal whip"}

func quoteOf(low, high int64) quote.Quote {
	return quote.Quote{ItemID: whip.ID, Low: quote.Price(low), High: quote.Price(high)}
}

func TestPollRendersAndNotifiesOncePerCrossing(t *testing.T) {
	prices := new(MockPrices)
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(100, 200), nil).Twice()
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(300, 400), nil).Once()
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(90, 200), nil).Once()

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n alerting.Notification) bool {
		return n.Rule.Name == "low-alert" && n.ItemName == "Abyssal whip" && n.IconPath == "/tmp/icon.png"
	})).Return(nil)

	reporter := &captureReporter{}
	s, err := NewSession(whip, Options{Rules: []alerting.Rule{alerting.LowAlert(150)}, Interval: time.Hour, IconPath: "/tmp/icon.png"},
		Deps{Prices: prices, Notifier: notifier, Reporter: reporter}, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Poll(ctx, time.Now()))
	}

	notifier.AssertNumberOfCalls(t, "Notify", 2)
	assert.Len(t, reporter.quotes, 4)
	assert.Equal(t, Stats{Polls: 4, Alerts: 2}, s.Stats())
	prices.AssertExpectations(t)
}

func TestPollUnavailableEndsCycleOnly(t *testing.T) {
	prices := new(MockPrices)
	prices.On("FetchQuote", mock.Anything, 4151).Return(quote.Quote{}, fetcher.ErrPriceUnavailable).Once()
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(100, 200), nil).Once()

	reporter := &captureReporter{}
	s, err := NewSession(whip, Options{Rules: []alerting.Rule{alerting.HighAlert(1000)}}, Deps{Prices: prices, Reporter: reporter}, zerolog.Nop())
	require.NoError(t, err)

	err = s.Poll(context.Background(), time.Now())
	assert.True(t, errors.Is(err, fetcher.ErrPriceUnavailable))
	assert.Contains(t, reporter.statuses, "Price data unavailable.")

	require.NoError(t, s.Poll(context.Background(), time.Now()))
	assert.Len(t, reporter.quotes, 1)
	assert.Equal(t, int64(1), s.Stats().Failures)
}

func TestPollRecordsHistory(t *testing.T) {
	prices := new(MockPrices)
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(100, 200), nil)

	samples := new(MockSamples)
	samples.On("InsertSample", mock.Anything, mock.MatchedBy(func(s storage.Sample) bool {
		return s.ItemID == 4151 && s.Source == storage.SourceLatest && s.SessionID != nil
	})).Return(nil)

	alerts := new(MockAlerts)
	alerts.On("InsertAlert", mock.Anything, mock.MatchedBy(func(r storage.AlertRecord) bool {
		return r.Rule == "buy-below" && r.Price == 200 && r.Channels[0] == "log"
	})).Return(nil)

	s, err := NewSession(whip, Options{Rules: []alerting.Rule{alerting.BuyBelow(250)}},
		Deps{Prices: prices, Samples: samples, Alerts: alerts, Channels: []string{"log"}, Reporter: &captureReporter{}}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Poll(context.Background(), time.Now()))
	samples.AssertExpectations(t)
	alerts.AssertExpectations(t)
}

func TestNotifierFailureDoesNotFailPoll(t *testing.T) {
	prices := new(MockPrices)
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(100, 200), nil)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("no dbus"))

	s, err := NewSession(whip, Options{Rules: []alerting.Rule{alerting.LowAlert(150)}},
		Deps{Prices: prices, Notifier: notifier, Reporter: &captureReporter{}}, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, s.Poll(context.Background(), time.Now()))
}

func TestRunStopsOnFlag(t *testing.T) {
	prices := new(MockPrices)
	prices.On("FetchQuote", mock.Anything, 4151).Return(quoteOf(100, 200), nil)

	reporter := &captureReporter{}
	s, err := NewSession(whip, Options{Rules: []alerting.Rule{alerting.LowAlert(1)}, Interval: 10 * time.Millisecond},
		Deps{Prices: prices, Reporter: reporter}, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool { return s.Stats().Polls >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.Running())
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}

	polls := s.Stats().Polls
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, polls, s.Stats().Polls, "no polls after stop")
	assert.False(t, s.Running())
	assert.Equal(t, "Monitoring started... (session "+s.ID()+")", reporter.statuses[0])
	assert.Equal(t, "Monitoring stopped.", reporter.statuses[len(reporter.statuses)-1])
}

func TestNewSessionRequiresRules(t *testing.T) {
	_, err := NewSession(whip, Options{}, Deps{Prices: new(MockPrices), Reporter: &captureReporter{}}, zerolog.Nop())
	assert.True(t, errors.Is(err, alerting.ErrNoRules))

	_, err = NewSession(whip, Options{Rules: []alerting.Rule{alerting.LowAlert(1)}}, Deps{Reporter: &captureReporter{}}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWriterReporter(t *testing.T) {
	var out, status bytes.Buffer
	r := NewWriterReporter(&out, &status)

	r.Quote("Cannonball", quote.Quote{Low: quote.Price(1000), High: quote.Price(1001)})
	r.Status(LevelInfo, "Monitoring started... (session abc)")
	r.Status(LevelError, "Price data unavailable.")

	assert.Equal(t, "Cannonball\nLow: 1,000 coins\nHigh: 1,001 coins\nMargin: 1 coins (0.10%)\n\n", out.String())

	out.Reset()
	r.Quote("Cannonball", quote.Quote{High: quote.Price(1001)})
	assert.Equal(t, "Cannonball\nLow: n/a coins\nHigh: 1,001 coins\n\n", out.String())
	assert.Equal(t, "Monitoring started... (session abc)\n[error] Price data unavailable.\n", status.String())
}
