// Package sync contains the ESI synchronization jobs and the runner that
// wraps every execution with sync_status ledger bookkeeping.
package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job family names as recorded in the sync_status ledger
const (
	JobRegions        = "regions"
	JobStations       = "stations"
	JobStructures     = "structures"
	JobMarketTree     = "market_groups"
	JobItemTypes      = "item_types"
	JobOrdersPopular  = "market_orders_popular"
	JobOrdersStandard = "market_orders_standard"
)

// Job is one sync job family. Run returns the number of records processed.
type Job interface {
	Name() string
	Run(ctx context.Context) (int, error)
}

// StatusStore persists the sync_status ledger
type StatusStore interface {
	MarkRunning(ctx context.Context, syncType string) error
	MarkCompleted(ctx context.Context, syncType string, recordsProcessed int) error
	MarkFailed(ctx context.Context, syncType, errorMessage string) error
}

// Runner executes jobs with ledger bookkeeping and a per-family lock. A
// trigger firing while the same family is still running is skipped rather
// than allowed to start a second concurrent writer.
type Runner struct {
	status StatusStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner creates a job runner
func NewRunner(status StatusStore, logger *zap.Logger) *Runner {
	return &Runner{
		status: status,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *Runner) familyLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[name] = lock
	}
	return lock
}

// Run executes a job: ledger row to running, job body, ledger row to
// completed or failed. Job failures are recorded and returned but never
// panic outward; the scheduler keeps running regardless.
func (r *Runner) Run(ctx context.Context, job Job) error {
	lock := r.familyLock(job.Name())
	if !lock.TryLock() {
		r.logger.Warn("Sync job already running, skipping trigger",
			zap.String("job", job.Name()))
		return nil
	}
	defer lock.Unlock()

	if err := r.status.MarkRunning(ctx, job.Name()); err != nil {
		return err
	}

	start := time.Now()
	r.logger.Info("Sync job started", zap.String("job", job.Name()))

	count, err := job.Run(ctx)
	if err != nil {
		r.logger.Error("Sync job failed",
			zap.String("job", job.Name()),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		if markErr := r.status.MarkFailed(ctx, job.Name(), err.Error()); markErr != nil {
			r.logger.Error("Failed to record job failure",
				zap.String("job", job.Name()),
				zap.Error(markErr))
		}
		return err
	}

	if err := r.status.MarkCompleted(ctx, job.Name(), count); err != nil {
		return err
	}

	r.logger.Info("Sync job completed",
		zap.String("job", job.Name()),
		zap.Int("records", count),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// sleepContext pauses for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
