package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// StructuresFetcher is the slice of the ESI client the structures job needs
type StructuresFetcher interface {
	FetchStructure(ctx context.Context, structureID int64, token string) (*model.ESIStructure, error)
}

// TokenReader supplies a bearer credential obtained out-of-band
type TokenReader interface {
	ValidToken(ctx context.Context) (string, error)
}

// StructureLocator lists the structure location ids referenced by stored
// market orders
type StructureLocator interface {
	StructureLocationIDs(ctx context.Context) ([]int64, error)
}

// SystemRegionResolver resolves a solar system to its region through any
// known station in that system
type SystemRegionResolver interface {
	RegionIDBySystem(ctx context.Context, systemID int64) (*int64, error)
}

// StructureStore persists structures
type StructureStore interface {
	Upsert(ctx context.Context, structure model.Structure) error
}

// StructuresJob syncs the player structures that appear as order locations
// in stored market data. The candidate set is demand-driven, never
// enumerated from upstream. Weekly cadence.
type StructuresJob struct {
	fetcher    StructuresFetcher
	tokens     TokenReader
	locations  StructureLocator
	stations   SystemRegionResolver
	structures StructureStore
	pause      time.Duration
	logger     *zap.Logger
}

// NewStructuresJob creates the structures sync job
func NewStructuresJob(
	fetcher StructuresFetcher,
	tokens TokenReader,
	locations StructureLocator,
	stations SystemRegionResolver,
	structures StructureStore,
	pause time.Duration,
	logger *zap.Logger,
) *StructuresJob {
	return &StructuresJob{
		fetcher:    fetcher,
		tokens:     tokens,
		locations:  locations,
		stations:   stations,
		structures: structures,
		pause:      pause,
		logger:     logger,
	}
}

// Name returns the ledger family name
func (j *StructuresJob) Name() string { return JobStructures }

// Run executes one structures sync. A missing credential fails the whole
// job; individual structure fetch failures are logged and counted but do
// not abort the run.
func (j *StructuresJob) Run(ctx context.Context) (int, error) {
	token, err := j.tokens.ValidToken(ctx)
	if err != nil {
		return 0, fmt.Errorf("structures sync requires a valid access token: %w", err)
	}

	structureIDs, err := j.locations.StructureLocationIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list structure locations: %w", err)
	}

	j.logger.Info("Syncing structures referenced by market orders",
		zap.Int("candidates", len(structureIDs)))

	if len(structureIDs) == 0 {
		return 0, nil
	}

	processed := 0
	failed := 0

	for _, structureID := range structureIDs {
		if err := j.syncStructure(ctx, structureID, token); err != nil {
			j.logger.Warn("Failed to sync structure",
				zap.Int64("structure_id", structureID),
				zap.Error(err))
			failed++
		} else {
			processed++
		}

		// Courtesy pause on top of the client's own pacing: these are
		// authenticated calls against a stricter error budget.
		if err := sleepContext(ctx, j.pause); err != nil {
			return processed, err
		}
	}

	j.logger.Info("Structures sync finished",
		zap.Int("processed", processed),
		zap.Int("failed", failed))

	return processed, nil
}

func (j *StructuresJob) syncStructure(ctx context.Context, structureID int64, token string) error {
	structure, err := j.fetcher.FetchStructure(ctx, structureID, token)
	if err != nil {
		return err
	}

	regionID, err := j.stations.RegionIDBySystem(ctx, structure.SolarSystemID)
	if err != nil {
		return err
	}

	return j.structures.Upsert(ctx, model.Structure{
		StructureID:   structureID,
		StructureName: structure.Name,
		OwnerID:       structure.OwnerID,
		SystemID:      structure.SolarSystemID,
		RegionID:      regionID,
		TypeID:        structure.TypeID,
	})
}
