package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ge-price-monitor/internal/logging"
)

// TickFunc is invoked on every interval.
type TickFunc func(ctx context.Context, at time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	StartupDelay time.Duration
}

// Scheduler drives a fixed-interval polling loop until stopped.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	ticks    atomic.Int64
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{
		opts:   opts,
		logger: logging.Component(logger, "scheduler"),
		stopCh: make(chan struct{}),
	}
}

// Stop raises the stop flag. The loop exits before its next tick; a tick
// already running completes. Safe to call more than once and from any goroutine.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	return s.stopped.Load()
}

// Ticks returns the number of ticks executed so far.
func (s *Scheduler) Ticks() int64 {
	return s.ticks.Load()
}

// Run blocks, invoking tick every interval until Stop is called (returns nil)
// or ctx is cancelled (returns ctx.Err()). Tick errors are logged, not fatal.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := s.wait(ctx, s.opts.StartupDelay); err != nil || s.Stopped() {
			return err
		}
	}

	next := time.Now()
	for {
		if s.Stopped() {
			s.logger.Debug().Msg("stop flag observed")
			return nil
		}

		at := time.Now().UTC()
		s.ticks.Add(1)
		s.logger.Debug().Time("at", at).Msg("executing scheduled tick")
		if err := tick(ctx, at); err != nil {
			s.logger.Error().Err(err).Time("at", at).Msg("tick execution failed")
		}

		next = next.Add(s.opts.Interval)
		delay := time.Until(next)
		if delay < 0 {
			next = time.Now()
			delay = 0
		}
		if err := s.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func (s *Scheduler) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopCh:
		return nil
	case <-timer.C:
		return nil
	}
}
