package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
	"github.com/sidarthus89/EVE-Trade/internal/repository"
)

// MarketService serves market order and market tree reads
type MarketService struct {
	orders       *repository.OrderRepository
	items        *repository.ItemTypeRepository
	snapshotPath string
	logger       *zap.Logger
}

// NewMarketService creates a new market service
func NewMarketService(
	orders *repository.OrderRepository,
	items *repository.ItemTypeRepository,
	snapshotPath string,
	logger *zap.Logger,
) *MarketService {
	return &MarketService{
		orders:       orders,
		items:        items,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// GetOrderBook retrieves the live buy/sell orders for an item in a region,
// optionally dropping price outliers per side with an IQR fence
func (s *MarketService) GetOrderBook(ctx context.Context, typeID, regionID int64, outlierFilter string) (*model.OrderBook, error) {
	orders, err := s.orders.GetLiveOrders(ctx, typeID, regionID)
	if err != nil {
		return nil, err
	}

	buyOrders := make([]model.MarketOrder, 0, len(orders))
	sellOrders := make([]model.MarketOrder, 0, len(orders))
	lastUpdated := time.Now()

	for i, order := range orders {
		if i == 0 || order.LastUpdated.After(lastUpdated) {
			lastUpdated = order.LastUpdated
		}
		if order.IsBuyOrder {
			buyOrders = append(buyOrders, order)
		} else {
			sellOrders = append(sellOrders, order)
		}
	}

	applied := OutlierFilterNone
	if multiplier, ok := parseOutlierFilter(outlierFilter); ok {
		buyOrders = filterOutliers(buyOrders, multiplier)
		sellOrders = filterOutliers(sellOrders, multiplier)
		applied = outlierFilter
	}

	return &model.OrderBook{
		TypeID:        typeID,
		RegionID:      regionID,
		OutlierFilter: applied,
		BuyOrders:     buyOrders,
		SellOrders:    sellOrders,
		LastUpdated:   lastUpdated,
	}, nil
}

// GetItemType retrieves one item type, or nil when unknown
func (s *MarketService) GetItemType(ctx context.Context, typeID int64) (*model.ItemType, error) {
	return s.items.GetByID(ctx, typeID)
}

// SearchItemTypes finds published items by a case-insensitive name fragment
func (s *MarketService) SearchItemTypes(ctx context.Context, query string) (*model.ItemSearchResult, error) {
	items, err := s.items.SearchByName(ctx, searchPattern(query))
	if err != nil {
		return nil, err
	}

	return &model.ItemSearchResult{
		Query:        query,
		TotalResults: len(items),
		Items:        items,
	}, nil
}

// searchPattern builds a contains-match LIKE pattern, escaping the LIKE
// metacharacters in the user's input
func searchPattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

// MarketTreeSnapshot returns the raw denormalized hierarchy snapshot as
// last rebuilt by the market tree sync job
func (s *MarketService) MarketTreeSnapshot() ([]byte, error) {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("market tree snapshot unavailable: %w", err)
	}
	return data, nil
}
