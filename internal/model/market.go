package model

import (
	"time"
)

// MarketGroup is a node in the market taxonomy tree. Root groups have a
// null parent.
type MarketGroup struct {
	MarketGroupID int64     `json:"market_group_id" db:"market_group_id"`
	GroupName     string    `json:"group_name" db:"group_name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	ParentGroupID *int64    `json:"parent_group_id,omitempty" db:"parent_group_id"`
	IconID        *int64    `json:"icon_id,omitempty" db:"icon_id"`
	HasTypes      bool      `json:"has_types" db:"has_types"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
}

// ItemType is a published, tradeable item type
type ItemType struct {
	TypeID        int64     `json:"type_id" db:"type_id"`
	TypeName      string    `json:"type_name" db:"type_name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Volume        *float64  `json:"volume,omitempty" db:"volume"`
	Mass          *float64  `json:"mass,omitempty" db:"mass"`
	Published     bool      `json:"published" db:"published"`
	MarketGroupID int64     `json:"market_group_id" db:"market_group_id"`
	IconID        *int64    `json:"icon_id,omitempty" db:"icon_id"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
}

// MarketOrder is a live buy or sell order. Order IDs are globally unique
// upstream; RegionID is stored alongside for query partitioning because the
// upstream payload does not echo it.
type MarketOrder struct {
	OrderID      int64     `json:"order_id" db:"order_id"`
	RegionID     int64     `json:"region_id" db:"region_id"`
	TypeID       int64     `json:"type_id" db:"type_id"`
	LocationID   int64     `json:"location_id" db:"location_id"`
	SystemID     int64     `json:"system_id" db:"system_id"`
	IsBuyOrder   bool      `json:"is_buy_order" db:"is_buy_order"`
	Price        float64   `json:"price" db:"price"`
	VolumeRemain int64     `json:"volume_remain" db:"volume_remain"`
	VolumeTotal  int64     `json:"volume_total" db:"volume_total"`
	MinVolume    int64     `json:"min_volume" db:"min_volume"`
	Duration     int       `json:"duration" db:"duration"`
	Issued       time.Time `json:"issued" db:"issued"`
	Expires      time.Time `json:"expires" db:"expires"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// OrderBook is the read-API response for one item in one region, split by
// side with optional outlier filtering already applied.
type OrderBook struct {
	TypeID        int64         `json:"type_id"`
	RegionID      int64         `json:"region_id"`
	OutlierFilter string        `json:"outlier_filter"`
	BuyOrders     []MarketOrder `json:"buy_orders"`
	SellOrders    []MarketOrder `json:"sell_orders"`
	LastUpdated   time.Time     `json:"last_updated"`
}

// ItemSearchResult is the read-API response for an item name search
type ItemSearchResult struct {
	Query        string     `json:"query"`
	TotalResults int        `json:"total_results"`
	Items        []ItemType `json:"items"`
}

// MarketTreeItem is one item entry in the denormalized hierarchy snapshot
type MarketTreeItem struct {
	TypeID   int64    `json:"type_id" db:"type_id"`
	TypeName string   `json:"type_name" db:"type_name"`
	IconID   *int64   `json:"icon_id,omitempty" db:"icon_id"`
	Volume   *float64 `json:"volume,omitempty" db:"volume"`
	Mass     *float64 `json:"mass,omitempty" db:"mass"`
}

// MarketTreeGroup is one group node in the denormalized hierarchy snapshot
type MarketTreeGroup struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	ParentID *int64           `json:"parent_id,omitempty"`
	Items    []MarketTreeItem `json:"items"`
}
