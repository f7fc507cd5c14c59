package scheduler

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	esisync "github.com/sidarthus89/EVE-Trade/internal/sync"
)

func TestQuarterlyDue(t *testing.T) {
	now := time.Date(2025, time.June, 1, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastSync *time.Time
		want     bool
	}{
		{"never run", nil, true},
		{"ran yesterday", timePtr(now.AddDate(0, 0, -1)), false},
		{"one day short", timePtr(now.AddDate(0, 0, -89)), false},
		{"exactly at interval", timePtr(now.AddDate(0, 0, -90)), true},
		{"well past interval", timePtr(now.AddDate(0, 0, -200)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quarterlyDue(tt.lastSync, now, 90); got != tt.want {
				t.Errorf("quarterlyDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStandardRegions(t *testing.T) {
	all := []int64{10000001, 10000002, 10000030, 10000055}
	got := standardRegions(all, PopularRegions)

	want := []int64{10000001, 10000055}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("standardRegions() = %v, want %v", got, want)
	}
}

func TestRegionSets(t *testing.T) {
	t.Run("popular set returns a defensive copy", func(t *testing.T) {
		set := PopularRegionSet()
		ids, err := set(context.Background())
		if err != nil {
			t.Fatalf("set() error = %v", err)
		}
		if !reflect.DeepEqual(ids, PopularRegions) {
			t.Errorf("ids = %v, want %v", ids, PopularRegions)
		}

		ids[0] = 0
		if PopularRegions[0] != 10000002 {
			t.Error("mutating the returned slice must not touch the partition")
		}
	})

	t.Run("standard set excludes the popular partition", func(t *testing.T) {
		lister := &fakeRegionLister{ids: append([]int64{10000016}, PopularRegions...)}
		set := StandardRegionSet(lister)

		ids, err := set(context.Background())
		if err != nil {
			t.Fatalf("set() error = %v", err)
		}
		if !reflect.DeepEqual(ids, []int64{10000016}) {
			t.Errorf("ids = %v, want [10000016]", ids)
		}
	})
}

func TestSchedulerStartStop(t *testing.T) {
	runner := esisync.NewRunner(&noopStatusStore{}, zap.NewNop())
	job := &noopJob{name: "regions"}
	jobs := Jobs{
		Regions:        job,
		Stations:       job,
		MarketTree:     job,
		Structures:     job,
		OrdersPopular:  job,
		OrdersStandard: job,
	}

	sched := New(runner, jobs, &fakeStatusReader{}, 90, zap.NewNop())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Second Start is a no-op, not a duplicate registration
	if err := sched.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	sched.Stop()
	sched.Stop()
}

func timePtr(t time.Time) *time.Time { return &t }

type fakeRegionLister struct {
	ids []int64
}

func (f *fakeRegionLister) GetIDs(context.Context) ([]int64, error) {
	return f.ids, nil
}

type fakeStatusReader struct{}

func (f *fakeStatusReader) LastSync(context.Context, string) (*time.Time, error) {
	return nil, nil
}

type noopStatusStore struct{}

func (s *noopStatusStore) MarkRunning(context.Context, string) error        { return nil }
func (s *noopStatusStore) MarkCompleted(context.Context, string, int) error { return nil }
func (s *noopStatusStore) MarkFailed(context.Context, string, string) error { return nil }

type noopJob struct {
	name string
}

func (j *noopJob) Name() string { return j.name }

func (j *noopJob) Run(context.Context) (int, error) { return 0, nil }
