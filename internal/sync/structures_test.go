package sync

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

type fakeStructuresFetcher struct {
	structures map[int64]*model.ESIStructure
	calls      int
}

func (f *fakeStructuresFetcher) FetchStructure(_ context.Context, structureID int64, _ string) (*model.ESIStructure, error) {
	f.calls++
	structure, ok := f.structures[structureID]
	if !ok {
		return nil, errors.New("forbidden")
	}
	return structure, nil
}

type fakeTokenReader struct {
	token string
	err   error
}

func (f *fakeTokenReader) ValidToken(context.Context) (string, error) {
	return f.token, f.err
}

type fakeStructureLocator struct {
	ids []int64
}

func (f *fakeStructureLocator) StructureLocationIDs(context.Context) ([]int64, error) {
	return f.ids, nil
}

type fakeRegionResolver struct {
	bySystem map[int64]int64
}

func (f *fakeRegionResolver) RegionIDBySystem(_ context.Context, systemID int64) (*int64, error) {
	if regionID, ok := f.bySystem[systemID]; ok {
		return &regionID, nil
	}
	return nil, nil
}

type fakeStructureStore struct {
	structures map[int64]model.Structure
}

func (s *fakeStructureStore) Upsert(_ context.Context, structure model.Structure) error {
	s.structures[structure.StructureID] = structure
	return nil
}

func TestStructuresJob(t *testing.T) {
	t.Run("missing token fails the job before any fetch", func(t *testing.T) {
		fetcher := &fakeStructuresFetcher{}
		job := NewStructuresJob(
			fetcher,
			&fakeTokenReader{err: errors.New("no valid access token found")},
			&fakeStructureLocator{ids: []int64{1035466617946}},
			&fakeRegionResolver{},
			&fakeStructureStore{structures: make(map[int64]model.Structure)},
			0,
			zap.NewNop(),
		)

		if _, err := job.Run(context.Background()); err == nil {
			t.Fatal("expected error when no token is available")
		}
		if fetcher.calls != 0 {
			t.Errorf("fetch calls = %d, want 0", fetcher.calls)
		}
	})

	t.Run("one failing structure does not abort the run", func(t *testing.T) {
		fetcher := &fakeStructuresFetcher{
			structures: map[int64]*model.ESIStructure{
				1035466617946: {Name: "4-HWWF - WinterCo. Central Station", OwnerID: 1000169, SolarSystemID: 30000240, TypeID: 35834},
				1038457641673: {Name: "Perimeter - Tranquility Trading Tower", OwnerID: 1000168, SolarSystemID: 30000144, TypeID: 35834},
			},
		}
		store := &fakeStructureStore{structures: make(map[int64]model.Structure)}
		job := NewStructuresJob(
			fetcher,
			&fakeTokenReader{token: "tok"},
			&fakeStructureLocator{ids: []int64{1035466617946, 1022222222222, 1038457641673}},
			&fakeRegionResolver{bySystem: map[int64]int64{30000144: 10000002}},
			store,
			0,
			zap.NewNop(),
		)

		count, err := job.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if count != 2 {
			t.Errorf("processed = %d, want 2", count)
		}
		if _, ok := store.structures[1022222222222]; ok {
			t.Error("unfetchable structure must not be persisted")
		}
	})

	t.Run("unknown system leaves region unset", func(t *testing.T) {
		store := &fakeStructureStore{structures: make(map[int64]model.Structure)}
		job := NewStructuresJob(
			&fakeStructuresFetcher{structures: map[int64]*model.ESIStructure{
				1035466617946: {Name: "Deep Null Keepstar", OwnerID: 1000169, SolarSystemID: 30004759, TypeID: 35834},
			}},
			&fakeTokenReader{token: "tok"},
			&fakeStructureLocator{ids: []int64{1035466617946}},
			&fakeRegionResolver{},
			store,
			0,
			zap.NewNop(),
		)

		if _, err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		got, ok := store.structures[1035466617946]
		if !ok {
			t.Fatal("structure was not persisted")
		}
		if got.RegionID != nil {
			t.Errorf("RegionID = %v, want nil for unresolvable system", *got.RegionID)
		}
	})
}
