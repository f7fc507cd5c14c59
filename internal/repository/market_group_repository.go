package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// MarketGroupRepository handles database operations for market groups
type MarketGroupRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMarketGroupRepository creates a new market group repository
func NewMarketGroupRepository(db *sqlx.DB, logger *zap.Logger) *MarketGroupRepository {
	return &MarketGroupRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a market group or refreshes its mutable fields
func (r *MarketGroupRepository) Upsert(ctx context.Context, group model.MarketGroup) error {
	query := `
		INSERT INTO market_groups (market_group_id, group_name, description, parent_group_id, icon_id, has_types, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (market_group_id)
		DO UPDATE SET
			group_name = EXCLUDED.group_name,
			description = EXCLUDED.description,
			parent_group_id = EXCLUDED.parent_group_id,
			icon_id = EXCLUDED.icon_id,
			has_types = EXCLUDED.has_types,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		group.MarketGroupID,
		group.GroupName,
		group.Description,
		group.ParentGroupID,
		group.IconID,
		group.HasTypes,
	)
	if err != nil {
		r.logger.Error("Failed to upsert market group",
			zap.Error(err),
			zap.Int64("market_group_id", group.MarketGroupID))
		return err
	}

	return nil
}

// GetGroupsWithTypes retrieves groups that carry directly-assigned item
// types, ordered by name. Used to rebuild the market tree snapshot.
func (r *MarketGroupRepository) GetGroupsWithTypes(ctx context.Context) ([]model.MarketGroup, error) {
	query := `
		SELECT market_group_id, group_name, description, parent_group_id, icon_id, has_types, last_updated
		FROM market_groups
		WHERE has_types = TRUE
		ORDER BY group_name
	`

	var groups []model.MarketGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		r.logger.Error("Failed to get market groups with types", zap.Error(err))
		return nil, err
	}

	return groups, nil
}
