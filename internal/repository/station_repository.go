package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// StationRepository handles database operations for stations
type StationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *sqlx.DB, logger *zap.Logger) *StationRepository {
	return &StationRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a station or refreshes its mutable fields
func (r *StationRepository) Upsert(ctx context.Context, station model.Station) error {
	query := `
		INSERT INTO stations (station_id, station_name, system_id, system_name, region_id, last_updated)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (station_id)
		DO UPDATE SET
			station_name = EXCLUDED.station_name,
			system_name = EXCLUDED.system_name,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		station.StationID,
		station.StationName,
		station.SystemID,
		station.SystemName,
		station.RegionID,
	)
	if err != nil {
		r.logger.Error("Failed to upsert station",
			zap.Error(err),
			zap.Int64("station_id", station.StationID))
		return err
	}

	return nil
}

// GetByRegion retrieves all stations in a region ordered by name
func (r *StationRepository) GetByRegion(ctx context.Context, regionID int64) ([]model.Station, error) {
	query := `
		SELECT station_id, station_name, system_id, system_name, region_id, last_updated
		FROM stations
		WHERE region_id = $1
		ORDER BY station_name
	`

	var stations []model.Station
	if err := r.db.SelectContext(ctx, &stations, query, regionID); err != nil {
		r.logger.Error("Failed to get stations for region",
			zap.Error(err),
			zap.Int64("region_id", regionID))
		return nil, err
	}

	return stations, nil
}

// RegionIDBySystem resolves the region of a solar system through any known
// station in that system. Returns nil when no station matches.
func (r *StationRepository) RegionIDBySystem(ctx context.Context, systemID int64) (*int64, error) {
	query := `SELECT region_id FROM stations WHERE system_id = $1 LIMIT 1`

	var regionID int64
	err := r.db.GetContext(ctx, &regionID, query, systemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve region for system",
			zap.Error(err),
			zap.Int64("system_id", systemID))
		return nil, err
	}

	return &regionID, nil
}
