package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

// MarketTreeFetcher is the slice of the ESI client the market tree job needs
type MarketTreeFetcher interface {
	FetchMarketGroupIDs(ctx context.Context) ([]int64, error)
	FetchMarketGroup(ctx context.Context, groupID int64) (*model.ESIMarketGroup, error)
	FetchType(ctx context.Context, typeID int64) (*model.ESIType, error)
}

// MarketGroupStore persists market groups and serves the tree projection
type MarketGroupStore interface {
	Upsert(ctx context.Context, group model.MarketGroup) error
	GetGroupsWithTypes(ctx context.Context) ([]model.MarketGroup, error)
}

// ItemTypeStore persists item types and serves the tree projection
type ItemTypeStore interface {
	Upsert(ctx context.Context, item model.ItemType) error
	GetPublishedByGroup(ctx context.Context, groupID int64) ([]model.MarketTreeItem, error)
}

// MarketTreeJob syncs the market group taxonomy and its published item
// types, then rebuilds the denormalized group->items snapshot wholesale
// from the now-current store. Quarterly cadence.
type MarketTreeJob struct {
	fetcher      MarketTreeFetcher
	groups       MarketGroupStore
	items        ItemTypeStore
	status       StatusStore
	snapshotPath string
	logger       *zap.Logger
}

// NewMarketTreeJob creates the market tree sync job
func NewMarketTreeJob(
	fetcher MarketTreeFetcher,
	groups MarketGroupStore,
	items ItemTypeStore,
	status StatusStore,
	snapshotPath string,
	logger *zap.Logger,
) *MarketTreeJob {
	return &MarketTreeJob{
		fetcher:      fetcher,
		groups:       groups,
		items:        items,
		status:       status,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// Name returns the ledger family name
func (j *MarketTreeJob) Name() string { return JobMarketTree }

// Run executes one market tree sync. The returned count is the number of
// groups processed; item types are tracked in their own ledger row.
func (j *MarketTreeJob) Run(ctx context.Context) (int, error) {
	groupIDs, err := j.fetcher.FetchMarketGroupIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch market group ids: %w", err)
	}

	j.logger.Info("Fetched market group list", zap.Int("total", len(groupIDs)))

	groupsProcessed := 0
	typesProcessed := 0

	for _, groupID := range groupIDs {
		group, err := j.fetcher.FetchMarketGroup(ctx, groupID)
		if err != nil {
			return groupsProcessed, fmt.Errorf("failed to fetch market group %d: %w", groupID, err)
		}

		record := model.MarketGroup{
			MarketGroupID: groupID,
			GroupName:     group.Name,
			ParentGroupID: group.ParentGroupID,
			HasTypes:      len(group.Types) > 0,
		}
		if group.Description != "" {
			record.Description = &group.Description
		}

		if err := j.groups.Upsert(ctx, record); err != nil {
			return groupsProcessed, fmt.Errorf("failed to upsert market group %d: %w", groupID, err)
		}
		groupsProcessed++

		for _, typeID := range group.Types {
			typeInfo, err := j.fetcher.FetchType(ctx, typeID)
			if err != nil {
				// One unfetchable type does not sink the whole tree
				j.logger.Warn("Failed to fetch item type, skipping",
					zap.Int64("type_id", typeID),
					zap.Error(err))
				continue
			}

			if !typeInfo.Published {
				continue
			}

			item := model.ItemType{
				TypeID:        typeID,
				TypeName:      typeInfo.Name,
				Volume:        typeInfo.Volume,
				Mass:          typeInfo.Mass,
				Published:     typeInfo.Published,
				MarketGroupID: groupID,
				IconID:        typeInfo.IconID,
			}
			if typeInfo.Description != "" {
				item.Description = &typeInfo.Description
			}

			if err := j.items.Upsert(ctx, item); err != nil {
				return groupsProcessed, fmt.Errorf("failed to upsert item type %d: %w", typeID, err)
			}
			typesProcessed++
		}

		if groupsProcessed%50 == 0 {
			j.logger.Info("Market tree sync progress",
				zap.Int("groups", groupsProcessed),
				zap.Int("total", len(groupIDs)))
		}
	}

	if err := j.rebuildSnapshot(ctx); err != nil {
		return groupsProcessed, err
	}

	if err := j.status.MarkCompleted(ctx, JobItemTypes, typesProcessed); err != nil {
		return groupsProcessed, err
	}

	j.logger.Info("Market tree synced",
		zap.Int("groups", groupsProcessed),
		zap.Int("types", typesProcessed))

	return groupsProcessed, nil
}

// rebuildSnapshot rewrites the queryable hierarchy snapshot from the store.
// The file is a derived cache, replaced wholesale each run.
func (j *MarketTreeJob) rebuildSnapshot(ctx context.Context) error {
	groups, err := j.groups.GetGroupsWithTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load groups for snapshot: %w", err)
	}

	tree := make([]model.MarketTreeGroup, 0, len(groups))
	for _, group := range groups {
		items, err := j.items.GetPublishedByGroup(ctx, group.MarketGroupID)
		if err != nil {
			return fmt.Errorf("failed to load items for group %d: %w", group.MarketGroupID, err)
		}

		tree = append(tree, model.MarketTreeGroup{
			ID:       group.MarketGroupID,
			Name:     group.GroupName,
			ParentID: group.ParentGroupID,
			Items:    items,
		})
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode market tree snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.snapshotPath), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(j.snapshotPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write market tree snapshot: %w", err)
	}

	j.logger.Info("Market tree snapshot rebuilt",
		zap.String("path", j.snapshotPath),
		zap.Int("groups", len(tree)))

	return nil
}
