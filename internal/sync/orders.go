package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// OrdersFetcher is the slice of the ESI client the market orders job needs
type OrdersFetcher interface {
	FetchRegionOrders(ctx context.Context, regionID int64) ([]model.ESIOrder, error)
}

// OrderStore persists market orders
type OrderStore interface {
	Upsert(ctx context.Context, order model.MarketOrder) error
	DeleteExpired(ctx context.Context, regionID int64) (int64, error)
}

// RegionSet produces the region ids a trigger should sync. The standard
// set is computed fresh from the store at trigger time, so newly
// discovered regions are automatically classified as standard.
type RegionSet func(ctx context.Context) ([]int64, error)

// OrdersJob syncs the full market order set for a partition of regions.
// Two instances exist: the popular partition on a 5-minute cadence and the
// standard complement on a 10-minute cadence.
type OrdersJob struct {
	name    string
	fetcher OrdersFetcher
	orders  OrderStore
	regions RegionSet
	logger  *zap.Logger
}

// NewOrdersJob creates a market orders sync job over the given region set
func NewOrdersJob(name string, fetcher OrdersFetcher, orders OrderStore, regions RegionSet, logger *zap.Logger) *OrdersJob {
	return &OrdersJob{
		name:    name,
		fetcher: fetcher,
		orders:  orders,
		regions: regions,
		logger:  logger,
	}
}

// Name returns the ledger family name
func (j *OrdersJob) Name() string { return j.name }

// Run syncs every region in the partition sequentially. A region failure
// is logged and counted but does not abort the remaining regions; the
// blast radius of an upstream failure stays bounded to one region.
func (j *OrdersJob) Run(ctx context.Context) (int, error) {
	regionIDs, err := j.regions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve region set: %w", err)
	}

	total := 0
	failed := 0

	for _, regionID := range regionIDs {
		count, err := j.syncRegion(ctx, regionID)
		if err != nil {
			j.logger.Error("Market orders sync failed for region",
				zap.Int64("region_id", regionID),
				zap.Error(err))
			failed++
			continue
		}
		total += count
	}

	if failed > 0 {
		j.logger.Warn("Market orders sync finished with region failures",
			zap.Int("regions", len(regionIDs)),
			zap.Int("failed", failed))
	}

	return total, nil
}

// syncRegion fetches, purges expired rows, and upserts one region's orders
func (j *OrdersJob) syncRegion(ctx context.Context, regionID int64) (int, error) {
	fetched, err := j.fetcher.FetchRegionOrders(ctx, regionID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	purged, err := j.orders.DeleteExpired(ctx, regionID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired orders: %w", err)
	}

	processed := 0
	skipped := 0

	for _, order := range fetched {
		// Defensive rejection of malformed upstream records
		if order.Issued == nil || order.Expires == nil {
			skipped++
			continue
		}

		minVolume := int64(1)
		if order.MinVolume != nil {
			minVolume = *order.MinVolume
		}

		record := model.MarketOrder{
			OrderID:      order.OrderID,
			RegionID:     regionID, // upstream payload does not echo it
			TypeID:       order.TypeID,
			LocationID:   order.LocationID,
			SystemID:     order.SystemID,
			IsBuyOrder:   order.IsBuyOrder,
			Price:        order.Price,
			VolumeRemain: order.VolumeRemain,
			VolumeTotal:  order.VolumeTotal,
			MinVolume:    minVolume,
			Duration:     order.Duration,
			Issued:       *order.Issued,
			Expires:      *order.Expires,
		}

		if err := j.orders.Upsert(ctx, record); err != nil {
			return processed, fmt.Errorf("failed to upsert order %d: %w", order.OrderID, err)
		}
		processed++
	}

	j.logger.Info("Region orders synced",
		zap.Int64("region_id", regionID),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int64("purged", purged))

	return processed, nil
}
