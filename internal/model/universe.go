package model

import (
	"time"
)

// WormholeRegionThreshold is the first region ID belonging to wormhole
// space. Regions at or above it have no NPC market and are never persisted.
const WormholeRegionThreshold = 11000000

// StructureLocationThreshold separates station location IDs from player
// structure location IDs in market order data.
const StructureLocationThreshold = 1000000000000

// Region represents a k-space region with at least one station
type Region struct {
	RegionID     int64     `json:"region_id" db:"region_id"`
	RegionName   string    `json:"region_name" db:"region_name"`
	StationCount int       `json:"station_count" db:"station_count"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// Station represents an NPC station discovered while walking a region's
// constellation/system hierarchy
type Station struct {
	StationID   int64     `json:"station_id" db:"station_id"`
	StationName string    `json:"station_name" db:"station_name"`
	SystemID    int64     `json:"system_id" db:"system_id"`
	SystemName  string    `json:"system_name" db:"system_name"`
	RegionID    int64     `json:"region_id" db:"region_id"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// Structure represents a player-owned structure referenced by live market
// orders. RegionID is resolved indirectly and may be null when no known
// station shares the structure's system.
type Structure struct {
	StructureID   int64     `json:"structure_id" db:"structure_id"`
	StructureName string    `json:"structure_name" db:"structure_name"`
	OwnerID       int64     `json:"owner_id" db:"owner_id"`
	SystemID      int64     `json:"system_id" db:"system_id"`
	RegionID      *int64    `json:"region_id,omitempty" db:"region_id"`
	TypeID        int64     `json:"type_id" db:"type_id"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
}
