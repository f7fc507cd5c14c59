package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// ItemTypeRepository handles database operations for item types
type ItemTypeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewItemTypeRepository creates a new item type repository
func NewItemTypeRepository(db *sqlx.DB, logger *zap.Logger) *ItemTypeRepository {
	return &ItemTypeRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts an item type or refreshes its mutable fields
func (r *ItemTypeRepository) Upsert(ctx context.Context, item model.ItemType) error {
	query := `
		INSERT INTO item_types (type_id, type_name, description, volume, mass, published, market_group_id, icon_id, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (type_id)
		DO UPDATE SET
			type_name = EXCLUDED.type_name,
			description = EXCLUDED.description,
			volume = EXCLUDED.volume,
			mass = EXCLUDED.mass,
			published = EXCLUDED.published,
			market_group_id = EXCLUDED.market_group_id,
			icon_id = EXCLUDED.icon_id,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		item.TypeID,
		item.TypeName,
		item.Description,
		item.Volume,
		item.Mass,
		item.Published,
		item.MarketGroupID,
		item.IconID,
	)
	if err != nil {
		r.logger.Error("Failed to upsert item type",
			zap.Error(err),
			zap.Int64("type_id", item.TypeID))
		return err
	}

	return nil
}

// GetByID retrieves one item type, or nil when unknown
func (r *ItemTypeRepository) GetByID(ctx context.Context, typeID int64) (*model.ItemType, error) {
	query := `
		SELECT type_id, type_name, description, volume, mass, published, market_group_id, icon_id, last_updated
		FROM item_types
		WHERE type_id = $1
	`

	var item model.ItemType
	err := r.db.GetContext(ctx, &item, query, typeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get item type",
			zap.Error(err),
			zap.Int64("type_id", typeID))
		return nil, err
	}

	return &item, nil
}

// SearchByName retrieves published items whose name matches the LIKE
// pattern, case-insensitive, ordered by name and capped at 50 rows
func (r *ItemTypeRepository) SearchByName(ctx context.Context, pattern string) ([]model.ItemType, error) {
	query := `
		SELECT type_id, type_name, description, volume, mass, published, market_group_id, icon_id, last_updated
		FROM item_types
		WHERE type_name ILIKE $1 AND published = TRUE
		ORDER BY type_name
		LIMIT 50
	`

	items := []model.ItemType{}
	if err := r.db.SelectContext(ctx, &items, query, pattern); err != nil {
		r.logger.Error("Failed to search item types",
			zap.Error(err),
			zap.String("pattern", pattern))
		return nil, err
	}

	return items, nil
}

// GetPublishedByGroup retrieves the published items of one market group,
// ordered by name. Used to rebuild the market tree snapshot.
func (r *ItemTypeRepository) GetPublishedByGroup(ctx context.Context, groupID int64) ([]model.MarketTreeItem, error) {
	query := `
		SELECT type_id, type_name, icon_id, volume, mass
		FROM item_types
		WHERE market_group_id = $1 AND published = TRUE
		ORDER BY type_name
	`

	var items []model.MarketTreeItem
	if err := r.db.SelectContext(ctx, &items, query, groupID); err != nil {
		r.logger.Error("Failed to get published items for group",
			zap.Error(err),
			zap.Int64("market_group_id", groupID))
		return nil, err
	}

	return items, nil
}
