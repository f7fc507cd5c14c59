package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// RegionRepository handles database operations for regions
type RegionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRegionRepository creates a new region repository
func NewRegionRepository(db *sqlx.DB, logger *zap.Logger) *RegionRepository {
	return &RegionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a region or refreshes its name and station count
func (r *RegionRepository) Upsert(ctx context.Context, regionID int64, name string, stationCount int) error {
	query := `
		INSERT INTO regions (region_id, region_name, station_count, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (region_id)
		DO UPDATE SET
			region_name = EXCLUDED.region_name,
			station_count = EXCLUDED.station_count,
			last_updated = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, regionID, name, stationCount); err != nil {
		r.logger.Error("Failed to upsert region",
			zap.Error(err),
			zap.Int64("region_id", regionID))
		return err
	}

	return nil
}

// GetAll retrieves all tradeable regions ordered by name
func (r *RegionRepository) GetAll(ctx context.Context) ([]model.Region, error) {
	query := `
		SELECT region_id, region_name, station_count, last_updated
		FROM regions
		ORDER BY region_name
	`

	var regions []model.Region
	if err := r.db.SelectContext(ctx, &regions, query); err != nil {
		r.logger.Error("Failed to get regions", zap.Error(err))
		return nil, err
	}

	return regions, nil
}

// GetIDs retrieves all stored region identifiers
func (r *RegionRepository) GetIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT region_id FROM regions ORDER BY region_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		r.logger.Error("Failed to get region ids", zap.Error(err))
		return nil, err
	}

	return ids, nil
}
