package sync

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

type fakeTreeFetcher struct {
	groupIDs []int64
	groups   map[int64]*model.ESIMarketGroup
	types    map[int64]*model.ESIType
	typeErrs map[int64]error
}

func (f *fakeTreeFetcher) FetchMarketGroupIDs(context.Context) ([]int64, error) {
	return f.groupIDs, nil
}

func (f *fakeTreeFetcher) FetchMarketGroup(_ context.Context, groupID int64) (*model.ESIMarketGroup, error) {
	return f.groups[groupID], nil
}

func (f *fakeTreeFetcher) FetchType(_ context.Context, typeID int64) (*model.ESIType, error) {
	if err := f.typeErrs[typeID]; err != nil {
		return nil, err
	}
	return f.types[typeID], nil
}

type fakeGroupStore struct {
	groups map[int64]model.MarketGroup
}

func (s *fakeGroupStore) Upsert(_ context.Context, group model.MarketGroup) error {
	s.groups[group.MarketGroupID] = group
	return nil
}

func (s *fakeGroupStore) GetGroupsWithTypes(context.Context) ([]model.MarketGroup, error) {
	var out []model.MarketGroup
	for _, group := range s.groups {
		if group.HasTypes {
			out = append(out, group)
		}
	}
	return out, nil
}

type fakeItemStore struct {
	items map[int64]model.ItemType
}

func (s *fakeItemStore) Upsert(_ context.Context, item model.ItemType) error {
	s.items[item.TypeID] = item
	return nil
}

func (s *fakeItemStore) GetPublishedByGroup(_ context.Context, groupID int64) ([]model.MarketTreeItem, error) {
	var out []model.MarketTreeItem
	for _, item := range s.items {
		if item.MarketGroupID == groupID && item.Published {
			out = append(out, model.MarketTreeItem{TypeID: item.TypeID, TypeName: item.TypeName})
		}
	}
	return out, nil
}

func TestMarketTreeJob(t *testing.T) {
	parent := int64(1)
	fetcher := &fakeTreeFetcher{
		groupIDs: []int64{1, 2},
		groups: map[int64]*model.ESIMarketGroup{
			1: {MarketGroupID: 1, Name: "Minerals"},
			2: {MarketGroupID: 2, Name: "Raw Minerals", ParentGroupID: &parent, Types: []int64{34, 35, 36}},
		},
		types: map[int64]*model.ESIType{
			34: {TypeID: 34, Name: "Tritanium", Published: true},
			35: {TypeID: 35, Name: "Pyerite Prototype", Published: false},
		},
		typeErrs: map[int64]error{36: errors.New("type gone")},
	}
	groups := &fakeGroupStore{groups: make(map[int64]model.MarketGroup)}
	items := &fakeItemStore{items: make(map[int64]model.ItemType)}
	status := newFakeStatusStore()
	snapshotPath := filepath.Join(t.TempDir(), "data", "marketTree.json")

	job := NewMarketTreeJob(fetcher, groups, items, status, snapshotPath, zap.NewNop())

	count, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 2 {
		t.Errorf("groups processed = %d, want 2", count)
	}

	if !groups.groups[2].HasTypes {
		t.Error("group 2 should be flagged as carrying types")
	}
	if groups.groups[1].HasTypes {
		t.Error("group 1 has no types but was flagged")
	}

	if _, ok := items.items[34]; !ok {
		t.Error("published type 34 missing from item store")
	}
	if _, ok := items.items[35]; ok {
		t.Error("unpublished type 35 must never be persisted")
	}
	if _, ok := items.items[36]; ok {
		t.Error("unfetchable type 36 should have been skipped")
	}

	// One published type reached the secondary ledger row
	if got := status.completed[JobItemTypes]; got != 1 {
		t.Errorf("item_types ledger count = %d, want 1", got)
	}

	// The snapshot is rebuilt wholesale and contains only published items
	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	var tree []model.MarketTreeGroup
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(tree) != 1 || tree[0].ID != 2 {
		t.Fatalf("snapshot groups = %+v, want only group 2", tree)
	}
	if len(tree[0].Items) != 1 || tree[0].Items[0].TypeID != 34 {
		t.Errorf("snapshot items = %+v, want only type 34", tree[0].Items)
	}
}
