package sync

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

type fakeRegionsFetcher struct {
	ids      []int64
	names    map[int64]string
	stations map[int64][]model.Station
}

func (f *fakeRegionsFetcher) FetchRegionIDs(context.Context) ([]int64, error) {
	return f.ids, nil
}

func (f *fakeRegionsFetcher) FetchRegion(_ context.Context, regionID int64) (*model.ESIRegion, error) {
	return &model.ESIRegion{RegionID: regionID, Name: f.names[regionID]}, nil
}

func (f *fakeRegionsFetcher) FetchStationsInRegion(_ context.Context, regionID int64) ([]model.Station, error) {
	return f.stations[regionID], nil
}

type fakeRegionStore struct {
	upserts map[int64]int // region id -> station count
}

func (s *fakeRegionStore) Upsert(_ context.Context, regionID int64, _ string, stationCount int) error {
	s.upserts[regionID] = stationCount
	return nil
}

func TestRegionsJob(t *testing.T) {
	station := func(id, region int64) model.Station {
		return model.Station{StationID: id, RegionID: region, SystemID: 1}
	}

	fetcher := &fakeRegionsFetcher{
		ids: []int64{10000002, 10000099, 11000001, 12000005},
		names: map[int64]string{
			10000002: "The Forge",
			10000099: "Empty Frontier",
		},
		stations: map[int64][]model.Station{
			10000002: {station(60003760, 10000002), station(60003761, 10000002)},
			10000099: {}, // no stations, no market
		},
	}
	store := &fakeRegionStore{upserts: make(map[int64]int)}
	job := NewRegionsJob(fetcher, store, zap.NewNop())

	count, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if count != 1 {
		t.Errorf("tradeable regions = %d, want 1", count)
	}
	if got := store.upserts[10000002]; got != 2 {
		t.Errorf("station count for 10000002 = %d, want 2", got)
	}
	if _, ok := store.upserts[10000099]; ok {
		t.Error("station-less region was persisted")
	}
	for _, wormhole := range []int64{11000001, 12000005} {
		if _, ok := store.upserts[wormhole]; ok {
			t.Errorf("wormhole region %d was persisted", wormhole)
		}
	}
}

type fakeRegionReader struct {
	regions []model.Region
}

func (r *fakeRegionReader) GetAll(context.Context) ([]model.Region, error) {
	return r.regions, nil
}

type fakeStationStore struct {
	upserts []model.Station
}

func (s *fakeStationStore) Upsert(_ context.Context, station model.Station) error {
	s.upserts = append(s.upserts, station)
	return nil
}

func TestStationsJob(t *testing.T) {
	fetcher := &fakeRegionsFetcher{
		stations: map[int64][]model.Station{
			10000002: {
				{StationID: 60003760, RegionID: 10000002, SystemID: 30000142, SystemName: "Jita"},
			},
			10000043: {
				{StationID: 60008494, RegionID: 10000043, SystemID: 30002187, SystemName: "Amarr"},
			},
		},
	}
	regions := &fakeRegionReader{regions: []model.Region{
		{RegionID: 10000002, RegionName: "The Forge"},
		{RegionID: 10000043, RegionName: "Domain"},
	}}
	store := &fakeStationStore{}
	job := NewStationsJob(fetcher, regions, store, zap.NewNop())

	count, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if count != 2 {
		t.Errorf("stations processed = %d, want 2", count)
	}

	// Every upserted station belongs to a region the job walked, so the
	// stations job cannot produce orphans.
	known := map[int64]bool{10000002: true, 10000043: true}
	for _, station := range store.upserts {
		if !known[station.RegionID] {
			t.Errorf("station %d upserted with unknown region %d", station.StationID, station.RegionID)
		}
	}
}
