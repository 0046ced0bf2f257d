// Package monitor runs a monitoring session: poll the price, show it,
// compare it against the user's thresholds and notify on crossings.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ge-price-monitor/internal/alerting"
	"ge-price-monitor/internal/catalog"
	"ge-price-monitor/internal/fetcher"
	"ge-price-monitor/internal/logging"
	"ge-price-monitor/internal/quote"
	"ge-price-monitor/internal/scheduler"
	"ge-price-monitor/internal/storage"
)

// Options configure one session.
type Options struct {
	Rules        []alerting.Rule
	Interval     time.Duration
	StartupDelay time.Duration
	IconPath     string
	Timeout      time.Duration
}

// Deps are the collaborators a session talks to. Only Prices and Reporter are required.
type Deps struct {
	Prices   fetcher.PriceFetcher
	Notifier alerting.Notifier
	Channels []string
	Samples  storage.SampleStore
	Alerts   storage.AlertStore
	Reporter Reporter
}

// Stats summarise a session.
type Stats struct {
	Polls    int64
	Failures int64
	Alerts   int64
}

// Session monitors a single item until stopped.
type Session struct {
	id        string
	item      catalog.Item
	opts      Options
	deps      Deps
	evaluator *alerting.Evaluator
	sched     *scheduler.Scheduler
	logger    zerolog.Logger

	running  atomic.Bool
	polls    atomic.Int64
	failures atomic.Int64
	alerts   atomic.Int64
}

// NewSession validates thresholds and prepares a session for item.
func NewSession(item catalog.Item, opts Options, deps Deps, logger zerolog.Logger) (*Session, error) {
	if deps.Prices == nil {
		return nil, errors.New("monitor: price fetcher required")
	}
	if deps.Reporter == nil {
		return nil, errors.New("monitor: reporter required")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	evaluator, err := alerting.NewEvaluator(opts.Rules)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := logging.Component(logger, "monitor").With().
		Str("session", id).
		Int("item_id", item.ID).
		Str("item", item.Name).
		Logger()

	return &Session{
		id:        id,
		item:      item,
		opts:      opts,
		deps:      deps,
		evaluator: evaluator,
		sched: scheduler.New(scheduler.Options{
			Interval:     opts.Interval,
			StartupDelay: opts.StartupDelay,
		}, log),
		logger: log,
	}, nil
}

// ID is the session identifier used in logs and history rows.
func (s *Session) ID() string {
	return s.id
}

// Running reports whether monitoring is on.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Stats returns counters accumulated so far.
func (s *Session) Stats() Stats {
	return Stats{Polls: s.polls.Load(), Failures: s.failures.Load(), Alerts: s.alerts.Load()}
}

// Run polls until Stop is called or ctx is cancelled. A stop returns nil.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("monitor: session already running")
	}
	defer s.running.Store(false)

	s.deps.Reporter.Status(LevelInfo, fmt.Sprintf("Monitoring started... (session %s)", s.ID()))
	rules := s.evaluator.Rules()
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	s.logger.Info().Dur("interval", s.opts.Interval).Strs("rules", names).Msg("monitoring started")

	err := s.sched.Run(ctx, s.Poll)

	s.deps.Reporter.Status(LevelWarn, "Monitoring stopped.")
	stats := s.Stats()
	s.logger.Info().
		Int64("ticks", s.sched.Ticks()).
		Int64("polls", stats.Polls).
		Int64("failures", stats.Failures).
		Int64("alerts", stats.Alerts).
		Msg("monitoring stopped")
	return err
}

// Stop raises the stop flag; the loop exits before its next poll.
func (s *Session) Stop() {
	s.sched.Stop()
}

// Poll runs one cycle. Errors end the cycle only.
func (s *Session) Poll(ctx context.Context, at time.Time) error {
	s.polls.Add(1)

	q, err := s.deps.Prices.FetchQuote(ctx, s.item.ID)
	if err != nil {
		s.failures.Add(1)
		if errors.Is(err, fetcher.ErrPriceUnavailable) {
			s.deps.Reporter.Status(LevelError, "Price data unavailable.")
		} else {
			s.deps.Reporter.Status(LevelError, fmt.Sprintf("Error fetching price: %v", err))
		}
		return fmt.Errorf("fetch quote: %w", err)
	}

	s.deps.Reporter.Quote(s.item.Name, q)
	s.record(ctx, q)

	for _, trigger := range s.evaluator.Evaluate(q) {
		s.dispatch(ctx, q, trigger)
	}
	return nil
}

func (s *Session) record(ctx context.Context, q quote.Quote) {
	if s.deps.Samples == nil {
		return
	}
	if err := s.deps.Samples.InsertSample(ctx, storage.SampleFromQuote(s.id, s.item.Name, q)); err != nil {
		s.logger.Error().Err(err).Msg("failed to record sample")
	}
}

func (s *Session) dispatch(ctx context.Context, q quote.Quote, trigger alerting.Trigger) {
	s.alerts.Add(1)

	note := alerting.NewNotification(s.id, s.item.Name, q, trigger)
	note.IconPath = s.opts.IconPath
	note.Timeout = s.opts.Timeout

	s.deps.Reporter.Status(LevelWarn, fmt.Sprintf("%s: %s", note.Title(), note.Message()))
	s.logger.Info().
		Str("rule", trigger.Rule.Name).
		Int64("price", trigger.Price).
		Int64("target", trigger.Rule.Target).
		Msg("threshold crossed")

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("rule", trigger.Rule.Name).Msg("failed to dispatch alert")
		}
	}

	if s.deps.Alerts != nil {
		if _, err := s.deps.Alerts.InsertAlert(ctx, storage.AlertFromNotification(note, s.deps.Channels)); err != nil {
			s.logger.Error().Err(err).Str("rule", trigger.Rule.Name).Msg("failed to persist alert record")
		}
	}
}
