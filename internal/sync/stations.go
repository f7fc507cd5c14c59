package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// StationsFetcher is the slice of the ESI client the stations job needs
type StationsFetcher interface {
	FetchStationsInRegion(ctx context.Context, regionID int64) ([]model.Station, error)
}

// RegionReader lists the regions already persisted
type RegionReader interface {
	GetAll(ctx context.Context) ([]model.Region, error)
}

// StationStore persists stations
type StationStore interface {
	Upsert(ctx context.Context, station model.Station) error
}

// StationsJob walks every stored region's constellation/system hierarchy
// and upserts all discovered stations. Quarterly cadence, gated by the
// scheduler against the ledger.
type StationsJob struct {
	fetcher  StationsFetcher
	regions  RegionReader
	stations StationStore
	logger   *zap.Logger
}

// NewStationsJob creates the stations sync job
func NewStationsJob(fetcher StationsFetcher, regions RegionReader, stations StationStore, logger *zap.Logger) *StationsJob {
	return &StationsJob{
		fetcher:  fetcher,
		regions:  regions,
		stations: stations,
		logger:   logger,
	}
}

// Name returns the ledger family name
func (j *StationsJob) Name() string { return JobStations }

// Run executes one stations sync
func (j *StationsJob) Run(ctx context.Context) (int, error) {
	regions, err := j.regions.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list regions: %w", err)
	}

	j.logger.Info("Syncing stations", zap.Int("regions", len(regions)))

	total := 0
	for _, region := range regions {
		stations, err := j.fetcher.FetchStationsInRegion(ctx, region.RegionID)
		if err != nil {
			return total, fmt.Errorf("failed to fetch stations for region %d: %w", region.RegionID, err)
		}

		for _, station := range stations {
			if err := j.stations.Upsert(ctx, station); err != nil {
				return total, fmt.Errorf("failed to upsert station %d: %w", station.StationID, err)
			}
			total++
		}

		j.logger.Info("Region stations synced",
			zap.String("region", region.RegionName),
			zap.Int("stations", len(stations)))
	}

	return total, nil
}
