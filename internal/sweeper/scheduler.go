package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
)

const (
	defaultInterval     = time.Minute
	defaultStartupDelay = 5 * time.Second
)

type sweepRunner interface {
	RunSweep(ctx context.Context) (Summary, error)
}

// SchedulerParams configure the sweep scheduler.
type SchedulerParams struct {
	Logger       *logger.Logger
	Coordinator  sweepRunner
	Lock         Lock
	Interval     time.Duration
	StartupDelay time.Duration
}

// Scheduler triggers sweep cycles on a fixed cadence. The first cycle runs
// after a short startup delay so the worker does not hammer the database
// during a rolling deploy. When a distributed lock is configured, a cycle
// that fails to acquire it is skipped and retried on the next tick.
type Scheduler struct {
	logg         *logger.Logger
	coordinator  sweepRunner
	lock         Lock
	interval     time.Duration
	startupDelay time.Duration
}

// NewScheduler builds a sweep scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coordinator == nil {
		return nil, fmt.Errorf("coordinator required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	startupDelay := params.StartupDelay
	if startupDelay < 0 {
		startupDelay = defaultStartupDelay
	}
	return &Scheduler{
		logg:         params.Logger,
		coordinator:  params.Coordinator,
		lock:         params.Lock,
		interval:     interval,
		startupDelay: startupDelay,
	}, nil
}

// Run starts the sweep loop until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.startupDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.startupDelay):
		}
	}

	s.runCycle(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "sweep scheduler context canceled")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if s.lock != nil {
		locked, err := s.lock.Acquire(ctx)
		if err != nil {
			s.logg.Error(ctx, "sweep lock acquire failed", err)
			return
		}
		if !locked {
			s.logg.Info(ctx, "another sweeper instance holds the lock; skipping this cycle")
			return
		}
		defer func() {
			if relErr := s.lock.Release(ctx); relErr != nil {
				s.logg.Error(ctx, "failed to release sweep lock", relErr)
			}
		}()
	}

	summary, err := s.coordinator.RunSweep(ctx)
	if err != nil {
		s.logg.Error(ctx, "sweep cycle finished with errors", err)
	}
	if summary.Skipped {
		return
	}
	rctx := s.logg.WithField(ctx, "attempted", summary.Attempted)
	rctx = s.logg.WithField(rctx, "succeeded", summary.Succeeded)
	rctx = s.logg.WithField(rctx, "failed", summary.Failed)
	s.logg.Info(rctx, "sweep cycle complete")
}
