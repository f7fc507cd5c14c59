package sync

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sidarthus89/EVE-Trade/internal/model"
)

type fakeOrdersFetcher struct {
	orders map[int64][]model.ESIOrder
	errs   map[int64]error
}

func (f *fakeOrdersFetcher) FetchRegionOrders(_ context.Context, regionID int64) ([]model.ESIOrder, error) {
	if err := f.errs[regionID]; err != nil {
		return nil, err
	}
	return f.orders[regionID], nil
}

// fakeOrderStore mimics the upsert-on-order-id conflict semantics of the
// real table: immutable identity columns keep their first value, mutable
// columns take the incoming one.
type fakeOrderStore struct {
	rows map[int64]model.MarketOrder
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{rows: make(map[int64]model.MarketOrder)}
}

func (s *fakeOrderStore) Upsert(_ context.Context, order model.MarketOrder) error {
	if existing, ok := s.rows[order.OrderID]; ok {
		existing.Price = order.Price
		existing.VolumeRemain = order.VolumeRemain
		existing.VolumeTotal = order.VolumeTotal
		existing.Expires = order.Expires
		s.rows[order.OrderID] = existing
		return nil
	}
	s.rows[order.OrderID] = order
	return nil
}

func (s *fakeOrderStore) DeleteExpired(_ context.Context, regionID int64) (int64, error) {
	now := time.Now()
	var deleted int64
	for id, order := range s.rows {
		if order.RegionID == regionID && order.Expires.Before(now) {
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func esiOrder(orderID int64, issued, expires *time.Time) model.ESIOrder {
	return model.ESIOrder{
		OrderID:      orderID,
		TypeID:       34,
		LocationID:   60003760,
		SystemID:     30000142,
		Price:        5.5,
		VolumeRemain: 100,
		VolumeTotal:  200,
		Duration:     90,
		Issued:       issued,
		Expires:      expires,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func staticRegions(ids ...int64) RegionSet {
	return func(context.Context) ([]int64, error) { return ids, nil }
}

func TestOrdersJob(t *testing.T) {
	issued := timePtr(time.Now().Add(-24 * time.Hour))
	expires := timePtr(time.Now().Add(30 * 24 * time.Hour))

	t.Run("idempotent against unchanged upstream", func(t *testing.T) {
		fetcher := &fakeOrdersFetcher{orders: map[int64][]model.ESIOrder{
			10000002: {esiOrder(1, issued, expires), esiOrder(2, issued, expires)},
		}}
		store := newFakeOrderStore()
		job := NewOrdersJob(JobOrdersPopular, fetcher, store, staticRegions(10000002), zap.NewNop())

		if _, err := job.Run(context.Background()); err != nil {
			t.Fatalf("first run error = %v", err)
		}
		first := make(map[int64]model.MarketOrder, len(store.rows))
		for id, row := range store.rows {
			first[id] = row
		}

		count, err := job.Run(context.Background())
		if err != nil {
			t.Fatalf("second run error = %v", err)
		}
		if count != 2 {
			t.Errorf("second run processed = %d, want 2", count)
		}
		if !reflect.DeepEqual(first, store.rows) {
			t.Errorf("row set changed across identical runs:\nfirst:  %v\nsecond: %v", first, store.rows)
		}
	})

	t.Run("purges exactly the expired orders of the region", func(t *testing.T) {
		fetcher := &fakeOrdersFetcher{orders: map[int64][]model.ESIOrder{
			10000002: {esiOrder(10, issued, expires)},
		}}
		store := newFakeOrderStore()
		past := time.Now().Add(-time.Hour)
		future := time.Now().Add(time.Hour)
		store.rows[100] = model.MarketOrder{OrderID: 100, RegionID: 10000002, Expires: past}
		store.rows[101] = model.MarketOrder{OrderID: 101, RegionID: 10000002, Expires: past}
		store.rows[102] = model.MarketOrder{OrderID: 102, RegionID: 10000002, Expires: future}
		store.rows[103] = model.MarketOrder{OrderID: 103, RegionID: 10000043, Expires: past}

		job := NewOrdersJob(JobOrdersPopular, fetcher, store, staticRegions(10000002), zap.NewNop())
		if _, err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		for _, gone := range []int64{100, 101} {
			if _, ok := store.rows[gone]; ok {
				t.Errorf("expired order %d survived the purge", gone)
			}
		}
		if _, ok := store.rows[102]; !ok {
			t.Error("live order 102 was purged")
		}
		if _, ok := store.rows[103]; !ok {
			t.Error("expired order 103 in another region was purged")
		}
	})

	t.Run("orders missing timestamps are skipped not failed", func(t *testing.T) {
		fetcher := &fakeOrdersFetcher{orders: map[int64][]model.ESIOrder{
			10000002: {
				esiOrder(1, issued, expires),
				esiOrder(2, nil, expires),
				esiOrder(3, issued, nil),
			},
		}}
		store := newFakeOrderStore()
		job := NewOrdersJob(JobOrdersPopular, fetcher, store, staticRegions(10000002), zap.NewNop())

		count, err := job.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if count != 1 {
			t.Errorf("processed = %d, want 1", count)
		}
		if len(store.rows) != 1 {
			t.Errorf("stored rows = %d, want 1", len(store.rows))
		}
	})

	t.Run("min volume defaults to one and region is attached", func(t *testing.T) {
		fetcher := &fakeOrdersFetcher{orders: map[int64][]model.ESIOrder{
			10000002: {esiOrder(7, issued, expires)},
		}}
		store := newFakeOrderStore()
		job := NewOrdersJob(JobOrdersPopular, fetcher, store, staticRegions(10000002), zap.NewNop())

		if _, err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		row := store.rows[7]
		if row.MinVolume != 1 {
			t.Errorf("MinVolume = %d, want default 1", row.MinVolume)
		}
		if row.RegionID != 10000002 {
			t.Errorf("RegionID = %d, want 10000002 (not echoed upstream)", row.RegionID)
		}
	})

	t.Run("one region failing does not abort the rest", func(t *testing.T) {
		fetcher := &fakeOrdersFetcher{
			orders: map[int64][]model.ESIOrder{
				10000043: {esiOrder(8, issued, expires)},
			},
			errs: map[int64]error{10000002: errors.New("upstream down")},
		}
		store := newFakeOrderStore()
		job := NewOrdersJob(JobOrdersStandard, fetcher, store, staticRegions(10000002, 10000043), zap.NewNop())

		count, err := job.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if count != 1 {
			t.Errorf("processed = %d, want 1 from the surviving region", count)
		}
		if _, ok := store.rows[8]; !ok {
			t.Error("order from surviving region missing")
		}
	})
}
