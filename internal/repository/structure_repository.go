package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// StructureRepository handles database operations for player structures
type StructureRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStructureRepository creates a new structure repository
func NewStructureRepository(db *sqlx.DB, logger *zap.Logger) *StructureRepository {
	return &StructureRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a structure or refreshes its mutable fields
func (r *StructureRepository) Upsert(ctx context.Context, structure model.Structure) error {
	query := `
		INSERT INTO structures (structure_id, structure_name, owner_id, system_id, region_id, type_id, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (structure_id)
		DO UPDATE SET
			structure_name = EXCLUDED.structure_name,
			owner_id = EXCLUDED.owner_id,
			system_id = EXCLUDED.system_id,
			region_id = EXCLUDED.region_id,
			type_id = EXCLUDED.type_id,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		structure.StructureID,
		structure.StructureName,
		structure.OwnerID,
		structure.SystemID,
		structure.RegionID,
		structure.TypeID,
	)
	if err != nil {
		r.logger.Error("Failed to upsert structure",
			zap.Error(err),
			zap.Int64("structure_id", structure.StructureID))
		return err
	}

	return nil
}
