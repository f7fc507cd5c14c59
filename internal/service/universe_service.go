package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
	"github.com/sidarthus89/EVE-Trade/internal/repository"
)

// UniverseService serves region and station reads
type UniverseService struct {
	regions  *repository.RegionRepository
	stations *repository.StationRepository
	logger   *zap.Logger
}

// NewUniverseService creates a new universe service
func NewUniverseService(
	regions *repository.RegionRepository,
	stations *repository.StationRepository,
	logger *zap.Logger,
) *UniverseService {
	return &UniverseService{
		regions:  regions,
		stations: stations,
		logger:   logger,
	}
}

// GetRegions retrieves all tradeable regions
func (s *UniverseService) GetRegions(ctx context.Context) ([]model.Region, error) {
	return s.regions.GetAll(ctx)
}

// GetStations retrieves the stations of one region
func (s *UniverseService) GetStations(ctx context.Context, regionID int64) ([]model.Station, error) {
	return s.stations.GetByRegion(ctx, regionID)
}
