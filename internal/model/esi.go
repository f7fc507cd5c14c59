package model

import (
	"time"
)

// Payload shapes returned by the ESI REST API. Field names follow the
// upstream JSON exactly.

// ESIRegion is the detail payload for a region
type ESIRegion struct {
	RegionID       int64   `json:"region_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Constellations []int64 `json:"constellations"`
}

// ESIConstellation is the detail payload for a constellation
type ESIConstellation struct {
	ConstellationID int64   `json:"constellation_id"`
	Name            string  `json:"name"`
	Systems         []int64 `json:"systems"`
}

// ESISystem is the detail payload for a solar system
type ESISystem struct {
	SystemID int64   `json:"system_id"`
	Name     string  `json:"name"`
	Stations []int64 `json:"stations"`
}

// ESIStation is the detail payload for an NPC station
type ESIStation struct {
	StationID int64  `json:"station_id"`
	Name      string `json:"name"`
	SystemID  int64  `json:"system_id"`
}

// ESIMarketGroup is the detail payload for a market group
type ESIMarketGroup struct {
	MarketGroupID int64   `json:"market_group_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ParentGroupID *int64  `json:"parent_group_id"`
	Types         []int64 `json:"types"`
}

// ESIType is the detail payload for an item type
type ESIType struct {
	TypeID        int64    `json:"type_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Volume        *float64 `json:"volume"`
	Mass          *float64 `json:"mass"`
	Published     bool     `json:"published"`
	MarketGroupID *int64   `json:"market_group_id"`
	IconID        *int64   `json:"icon_id"`
}

// ESIOrder is one market order as returned by the paginated region orders
// endpoint. Issued and Expires are pointers so records missing either
// timestamp can be detected and rejected rather than zero-valued.
type ESIOrder struct {
	OrderID      int64      `json:"order_id"`
	TypeID       int64      `json:"type_id"`
	LocationID   int64      `json:"location_id"`
	SystemID     int64      `json:"system_id"`
	IsBuyOrder   bool       `json:"is_buy_order"`
	Price        float64    `json:"price"`
	VolumeRemain int64      `json:"volume_remain"`
	VolumeTotal  int64      `json:"volume_total"`
	MinVolume    *int64     `json:"min_volume"`
	Duration     int        `json:"duration"`
	Issued       *time.Time `json:"issued"`
	Expires      *time.Time `json:"expires"`
}

// ESIStructure is the authenticated detail payload for a player structure
type ESIStructure struct {
	Name          string `json:"name"`
	OwnerID       int64  `json:"owner_id"`
	SolarSystemID int64  `json:"solar_system_id"`
	TypeID        int64  `json:"type_id"`
}
