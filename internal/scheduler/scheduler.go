// Package scheduler triggers the sync jobs on their cadences. Sub-daily
// and daily cadences map directly onto cron entries; quarterly cadences
// run behind a cheap daily check against the sync_status ledger so the
// decision survives process restarts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	esisync "github.com/sidarthus89/EVE-Trade/internal/sync"
)

// PopularRegions are the trade-hub regions refreshed on the fast cadence.
// Everything else in the store is the standard partition.
var PopularRegions = []int64{
	10000002, // The Forge (Jita)
	10000043, // Domain (Amarr)
	10000032, // Sinq Laison (Dodixie)
	10000030, // Heimatar (Rens)
	10000042, // Metropolis (Hek)
}

// Trigger expressions, matching the original sync windows
const (
	specRegions        = "0 3 * * *"    // daily 03:00
	specStationsGate   = "0 4 * * *"    // daily 04:00, quarterly gate
	specStructures     = "0 4 * * 0"    // Sunday 04:00
	specMarketTreeGate = "0 5 * * *"    // daily 05:00, quarterly gate
	specOrdersPopular  = "*/5 * * * *"  // every 5 minutes
	specOrdersStandard = "*/10 * * * *" // every 10 minutes
)

// StatusReader reads ledger timestamps for quarterly gating
type StatusReader interface {
	LastSync(ctx context.Context, syncType string) (*time.Time, error)
}

// RegionIDLister lists stored region ids for the standard partition
type RegionIDLister interface {
	GetIDs(ctx context.Context) ([]int64, error)
}

// Jobs holds one instance per job family
type Jobs struct {
	Regions        esisync.Job
	Stations       esisync.Job
	MarketTree     esisync.Job
	Structures     esisync.Job
	OrdersPopular  esisync.Job
	OrdersStandard esisync.Job
}

// Scheduler owns the cron timers. One active instance per process;
// starting a running scheduler is a logged no-op.
type Scheduler struct {
	cron          *cron.Cron
	runner        *esisync.Runner
	jobs          Jobs
	status        StatusReader
	quarterlyDays int
	logger        *zap.Logger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler over the given jobs
func New(runner *esisync.Runner, jobs Jobs, status StatusReader, quarterlyDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		runner:        runner,
		jobs:          jobs,
		status:        status,
		quarterlyDays: quarterlyDays,
		logger:        logger,
	}
}

// Start registers all triggers and starts the timers
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Scheduler already running")
		return nil
	}

	entries := []struct {
		spec string
		name string
		run  func()
	}{
		{specRegions, "regions", s.trigger(s.jobs.Regions)},
		{specStationsGate, "stations gate", s.quarterlyTrigger(s.jobs.Stations)},
		{specStructures, "structures", s.trigger(s.jobs.Structures)},
		{specMarketTreeGate, "market tree gate", s.quarterlyTrigger(s.jobs.MarketTree)},
		{specOrdersPopular, "orders popular", s.trigger(s.jobs.OrdersPopular)},
		{specOrdersStandard, "orders standard", s.trigger(s.jobs.OrdersStandard)},
	}

	for _, entry := range entries {
		if _, err := s.cron.AddFunc(entry.spec, entry.run); err != nil {
			return err
		}
		s.logger.Info("Scheduled sync trigger",
			zap.String("trigger", entry.name),
			zap.String("spec", entry.spec))
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Sync scheduler started")

	return nil
}

// Stop cancels pending timers. In-flight job runs are not aborted; they
// finish or fail on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Warn("Scheduler not running")
		return
	}

	s.cron.Stop()
	s.running = false
	s.logger.Info("Sync scheduler stopped")
}

// trigger fires a job unconditionally
func (s *Scheduler) trigger(job esisync.Job) func() {
	return func() {
		// Failures are recorded in the ledger by the runner; the
		// scheduler itself never dies with a job.
		_ = s.runner.Run(context.Background(), job)
	}
}

// quarterlyTrigger fires a job only when its ledger row is absent or older
// than the configured interval
func (s *Scheduler) quarterlyTrigger(job esisync.Job) func() {
	return func() {
		ctx := context.Background()

		lastSync, err := s.status.LastSync(ctx, job.Name())
		if err != nil {
			s.logger.Error("Failed to read ledger for quarterly gate",
				zap.String("job", job.Name()),
				zap.Error(err))
			return
		}

		if !quarterlyDue(lastSync, time.Now(), s.quarterlyDays) {
			return
		}

		s.logger.Info("Quarterly gate open, running job",
			zap.String("job", job.Name()))
		_ = s.runner.Run(ctx, job)
	}
}

// quarterlyDue reports whether a long-cadence job is due: never run, or
// last run at least intervalDays whole days ago
func quarterlyDue(lastSync *time.Time, now time.Time, intervalDays int) bool {
	if lastSync == nil {
		return true
	}
	daysSince := now.Sub(*lastSync).Hours() / 24
	return daysSince >= float64(intervalDays)
}

// PopularRegionSet returns the fixed popular partition
func PopularRegionSet() esisync.RegionSet {
	return func(context.Context) ([]int64, error) {
		ids := make([]int64, len(PopularRegions))
		copy(ids, PopularRegions)
		return ids, nil
	}
}

// StandardRegionSet returns the complement of the popular partition,
// computed fresh from the store at every trigger
func StandardRegionSet(regions RegionIDLister) esisync.RegionSet {
	return func(ctx context.Context) ([]int64, error) {
		all, err := regions.GetIDs(ctx)
		if err != nil {
			return nil, err
		}
		return standardRegions(all, PopularRegions), nil
	}
}

// standardRegions filters the popular ids out of the full region set
func standardRegions(all, popular []int64) []int64 {
	popularSet := make(map[int64]struct{}, len(popular))
	for _, id := range popular {
		popularSet[id] = struct{}{}
	}

	standard := make([]int64, 0, len(all))
	for _, id := range all {
		if _, ok := popularSet[id]; !ok {
			standard = append(standard, id)
		}
	}
	return standard
}
