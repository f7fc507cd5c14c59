package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// RegionsFetcher is the slice of the ESI client the regions job needs
type RegionsFetcher interface {
	FetchRegionIDs(ctx context.Context) ([]int64, error)
	FetchRegion(ctx context.Context, regionID int64) (*model.ESIRegion, error)
	FetchStationsInRegion(ctx context.Context, regionID int64) ([]model.Station, error)
}

// RegionStore persists regions
type RegionStore interface {
	Upsert(ctx context.Context, regionID int64, name string, stationCount int) error
}

// RegionsJob enumerates all regions, excludes wormhole space, and persists
// every k-space region with at least one station (the practical definition
// of an active market). Runs daily.
type RegionsJob struct {
	fetcher RegionsFetcher
	regions RegionStore
	logger  *zap.Logger
}

// NewRegionsJob creates the regions sync job
func NewRegionsJob(fetcher RegionsFetcher, regions RegionStore, logger *zap.Logger) *RegionsJob {
	return &RegionsJob{
		fetcher: fetcher,
		regions: regions,
		logger:  logger,
	}
}

// Name returns the ledger family name
func (j *RegionsJob) Name() string { return JobRegions }

// Run executes one regions sync
func (j *RegionsJob) Run(ctx context.Context) (int, error) {
	regionIDs, err := j.fetcher.FetchRegionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch region ids: %w", err)
	}

	j.logger.Info("Fetched region list", zap.Int("total", len(regionIDs)))

	processed := 0
	tradeable := 0

	for _, regionID := range regionIDs {
		if regionID >= model.WormholeRegionThreshold {
			continue
		}

		region, err := j.fetcher.FetchRegion(ctx, regionID)
		if err != nil {
			return tradeable, fmt.Errorf("failed to fetch region %d: %w", regionID, err)
		}

		stations, err := j.fetcher.FetchStationsInRegion(ctx, regionID)
		if err != nil {
			return tradeable, fmt.Errorf("failed to fetch stations for region %d: %w", regionID, err)
		}

		if len(stations) > 0 {
			if err := j.regions.Upsert(ctx, regionID, region.Name, len(stations)); err != nil {
				return tradeable, fmt.Errorf("failed to upsert region %d: %w", regionID, err)
			}
			tradeable++
		}

		processed++
		if processed%10 == 0 {
			j.logger.Info("Regions sync progress",
				zap.Int("processed", processed),
				zap.Int("total", len(regionIDs)))
		}
	}

	j.logger.Info("Regions sync finished walking",
		zap.Int("tradeable", tradeable),
		zap.Int("processed", processed))

	return tradeable, nil
}
