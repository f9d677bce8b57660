package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/logger"
	"github.com/kennyjayamorgiente-ux/parkpass-backend/pkg/metrics"
)

const sweepName = "grace-period"

type candidateScanner interface {
	FindExpiredReservations(ctx context.Context, gracePeriod time.Duration) ([]Candidate, error)
}

type candidateExpirer interface {
	ExpireOne(ctx context.Context, cand Candidate) error
}

// Summary reports the outcome of one sweep cycle.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   bool
}

// CoordinatorParams configure the sweep coordinator.
type CoordinatorParams struct {
	Logger      *logger.Logger
	Scanner     candidateScanner
	Expirer     candidateExpirer
	Metrics     *metrics.SweepMetrics
	GracePeriod time.Duration
}

// Coordinator runs one sweep at a time: scan for overdue reservations, then
// expire each sequentially. A candidate failure is isolated; the rest of the
// batch still runs. Overlapping invocations are short-circuited so a slow
// sweep is never doubled up.
type Coordinator struct {
	logg        *logger.Logger
	scanner     candidateScanner
	expirer     candidateExpirer
	metrics     *metrics.SweepMetrics
	gracePeriod time.Duration
	running     atomic.Bool
}

// NewCoordinator builds a sweep coordinator.
func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Scanner == nil {
		return nil, fmt.Errorf("scanner required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("expirer required")
	}
	if params.GracePeriod <= 0 {
		return nil, fmt.Errorf("grace period must be positive")
	}
	return &Coordinator{
		logg:        params.Logger,
		scanner:     params.Scanner,
		expirer:     params.Expirer,
		metrics:     params.Metrics,
		gracePeriod: params.GracePeriod,
	}, nil
}

// RunSweep executes a single sweep cycle. If a cycle is already in flight
// the call returns immediately with Skipped set. Per-candidate failures are
// isolated and combined into the returned error; the rest of the batch
// still runs.
func (c *Coordinator) RunSweep(ctx context.Context) (Summary, error) {
	if !c.running.CompareAndSwap(false, true) {
		c.logg.Info(ctx, "sweep already in progress; skipping")
		c.metrics.IncSkipped(sweepName)
		return Summary{Skipped: true}, nil
	}
	defer c.running.Store(false)

	started := time.Now()
	defer func() {
		c.metrics.ObserveDuration(sweepName, time.Since(started))
	}()

	candidates, err := c.scanner.FindExpiredReservations(ctx, c.gracePeriod)
	if err != nil {
		c.metrics.IncFailure(sweepName)
		return Summary{}, fmt.Errorf("scanning for overdue reservations: %w", err)
	}

	summary := Summary{Attempted: len(candidates)}
	var errs []error
	for _, cand := range candidates {
		if err := c.expirer.ExpireOne(ctx, cand); err != nil {
			rctx := c.logg.WithReservationID(ctx, cand.ReservationID.String())
			c.logg.Error(rctx, "expiring reservation failed", err)
			errs = append(errs, fmt.Errorf("reservation %s: %w", cand.ReservationID, err))
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	c.metrics.IncSuccess(sweepName)
	c.metrics.AddExpired(summary.Succeeded)
	return summary, multierr.Combine(errs...)
}
