// Package scheduler triggers periodic staleness checks of the rate table.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"ratesvc/internal/coordinator"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher is the coordinator operation the scheduler drives.
type Refresher interface {
	EnsureFresh(ctx context.Context, pivot string, maxAge time.Duration, force bool) (coordinator.Result, error)
}

// Scheduler posts check signals from a cron timer and from Activate into a one-slot
// channel. Its own loop drains the channel, so signals coalesce while a check runs.
type Scheduler struct {
	refresher Refresher
	pivot     string
	interval  time.Duration
	schedule  cron.Schedule
	logger    *zap.SugaredLogger

	trigger chan struct{}
	stopped atomic.Bool
	done    chan struct{}
}

// New creates a Scheduler that checks pivot every interval and refreshes it when
// older than interval.
func New(r Refresher, pivot string, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		refresher: r,
		pivot:     pivot,
		interval:  interval,
		schedule:  cron.Every(interval),
		logger:    logger,
		trigger:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Activate requests a staleness check, as when the session comes back to the foreground.
// It is a no-op after Run has returned.
func (s *Scheduler) Activate() {
	if s.stopped.Load() {
		return
	}
	s.signal()
}

func (s *Scheduler) signal() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run starts the timer and processes signals until ctx ends. On return the timer is
// stopped and no further checks run.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(s.signal))
	c.Start()
	s.logger.Infow("Staleness scheduler started", "pivot", s.pivot, "interval", s.interval)

	defer func() {
		s.stopped.Store(true)
		<-c.Stop().Done()
		s.logger.Info("Staleness scheduler stopped")
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.trigger:
			s.check(ctx)
		}
	}
}

// Done is closed once Run has returned, after any running check has finished.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

func (s *Scheduler) check(ctx context.Context) {
	res, err := s.refresher.EnsureFresh(ctx, s.pivot, s.interval, false)
	if err != nil {
		s.logger.Warnw("Scheduled rate refresh failed", "pivot", s.pivot, "error", err)
		return
	}
	s.logger.Debugw("Staleness check done", "pivot", s.pivot, "source", res.Source)
}
