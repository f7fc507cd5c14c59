package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// OrderRepository handles database operations for market orders
type OrderRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new market order repository
func NewOrderRepository(db *sqlx.DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts an order or refreshes the fields that change while an
// order is live. Order IDs are globally unique upstream, so the conflict
// key is the order id alone.
func (r *OrderRepository) Upsert(ctx context.Context, order model.MarketOrder) error {
	query := `
		INSERT INTO market_orders
			(order_id, region_id, type_id, location_id, system_id, is_buy_order,
			 price, volume_remain, volume_total, min_volume, duration, issued, expires, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (order_id)
		DO UPDATE SET
			price = EXCLUDED.price,
			volume_remain = EXCLUDED.volume_remain,
			volume_total = EXCLUDED.volume_total,
			expires = EXCLUDED.expires,
			last_updated = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		order.OrderID,
		order.RegionID,
		order.TypeID,
		order.LocationID,
		order.SystemID,
		order.IsBuyOrder,
		order.Price,
		order.VolumeRemain,
		order.VolumeTotal,
		order.MinVolume,
		order.Duration,
		order.Issued,
		order.Expires,
	)
	if err != nil {
		r.logger.Error("Failed to upsert market order",
			zap.Error(err),
			zap.Int64("order_id", order.OrderID))
		return err
	}

	return nil
}

// DeleteExpired purges orders for a region whose expiry has passed,
// returning the number of rows removed
func (r *OrderRepository) DeleteExpired(ctx context.Context, regionID int64) (int64, error) {
	query := `DELETE FROM market_orders WHERE region_id = $1 AND expires < NOW()`

	result, err := r.db.ExecContext(ctx, query, regionID)
	if err != nil {
		r.logger.Error("Failed to delete expired orders",
			zap.Error(err),
			zap.Int64("region_id", regionID))
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// GetLiveOrders retrieves unexpired orders for one item in one region,
// buy orders first
func (r *OrderRepository) GetLiveOrders(ctx context.Context, typeID, regionID int64) ([]model.MarketOrder, error) {
	query := `
		SELECT order_id, region_id, type_id, location_id, system_id, is_buy_order,
		       price, volume_remain, volume_total, min_volume, duration, issued, expires, last_updated
		FROM market_orders
		WHERE type_id = $1 AND region_id = $2 AND expires > NOW()
		ORDER BY is_buy_order DESC, price
	`

	var orders []model.MarketOrder
	if err := r.db.SelectContext(ctx, &orders, query, typeID, regionID); err != nil {
		r.logger.Error("Failed to get live orders",
			zap.Error(err),
			zap.Int64("type_id", typeID),
			zap.Int64("region_id", regionID))
		return nil, err
	}

	return orders, nil
}

// StructureLocationIDs retrieves the distinct structure location ids
// referenced by stored market orders. Structures are only synced for this
// demand-driven set.
func (r *OrderRepository) StructureLocationIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT location_id
		FROM market_orders
		WHERE location_id > $1
	`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, model.StructureLocationThreshold); err != nil {
		r.logger.Error("Failed to get structure location ids", zap.Error(err))
		return nil, err
	}

	return ids, nil
}
