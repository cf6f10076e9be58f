package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"restroom_radar/internal/app"
	"restroom_radar/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	mu    sync.Mutex
	recs  []domain.RestroomRecord
	err   error
	calls int
}

func (f *fakeSource) ListRestrooms(ctx context.Context) ([]domain.RestroomRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.RestroomRecord(nil), f.recs...), nil
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	mu     sync.Mutex
	store  map[string][]byte
	getErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestCatalog_NilBeforeFirstLoad(t *testing.T) {
	c := app.NewCatalog(&fakeSource{}, nil, time.Minute)
	if c.Snapshot() != nil {
		t.Fatalf("expected nil snapshot before refresh")
	}
}

func TestCatalog_RefreshFromStoreThenCache(t *testing.T) {
	src := &fakeSource{recs: []domain.RestroomRecord{
		{ID: 1, BuildingName: "Du Bois Library", Latitude: duboisLat, Longitude: duboisLon, Notes: ptr("24h")},
	}}
	cache := &fakeCache{}
	c := app.NewCatalog(src, cache, 10*time.Minute)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := c.Snapshot()
	if snap.Len() != 1 || snap.Source != "store" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// second refresh is served by the cache
	src.recs = nil
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap = c.Snapshot()
	if snap.Len() != 1 || snap.Source != "cache" || src.calls != 1 {
		t.Fatalf("expected cached snapshot, got %+v (store calls %d)", snap, src.calls)
	}
	if got := snap.Records[0]; got.Notes == nil || *got.Notes != "24h" {
		t.Fatalf("optional field lost through cache: %+v", got)
	}
}

func TestCatalog_StoreFailureKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{recs: []domain.RestroomRecord{{ID: 1, BuildingName: "A"}}}
	c := app.NewCatalog(src, nil, time.Minute)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	prev := c.Snapshot()

	src.err = errors.New("connection refused")
	err := c.Refresh(context.Background())
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("want ErrDataUnavailable, got %v", err)
	}
	if c.Snapshot() != prev {
		t.Fatalf("previous snapshot should stay published")
	}
}

func TestCatalog_FirstLoadFailureLeavesSearchUnavailable(t *testing.T) {
	c := app.NewCatalog(&fakeSource{err: errors.New("down")}, nil, time.Minute)
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	svc := app.NewSearchService(c, kmOpts)
	_, err := svc.Search(context.Background(), domain.Query{Latitude: 1, Longitude: 1, Radius: 1})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("want ErrDataUnavailable, got %v", err)
	}
}

func TestCatalog_CacheErrorFallsBackToStore(t *testing.T) {
	src := &fakeSource{recs: []domain.RestroomRecord{{ID: 1, BuildingName: "A"}}}
	c := app.NewCatalog(src, &fakeCache{getErr: errors.New("redis down")}, time.Minute)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c.Snapshot().Source != "store" || src.calls != 1 {
		t.Fatalf("expected store read")
	}
}

func TestCatalog_EmptyStoreIsEmptySnapshot(t *testing.T) {
	c := app.NewCatalog(&fakeSource{}, nil, time.Minute)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c.Snapshot() == nil || c.Snapshot().Len() != 0 {
		t.Fatalf("expected empty published snapshot")
	}
}

func TestCatalog_Invalidate(t *testing.T) {
	cache := &fakeCache{}
	src := &fakeSource{recs: []domain.RestroomRecord{{ID: 1, BuildingName: "A"}}}
	c := app.NewCatalog(src, cache, time.Minute)
	_ = c.Refresh(context.Background())

	if err := c.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	src.recs = append(src.recs, domain.RestroomRecord{ID: 2, BuildingName: "B"})
	_ = c.Refresh(context.Background())
	if c.Snapshot().Len() != 2 || src.calls != 2 {
		t.Fatalf("expected reload from store after invalidate, got %d records", c.Snapshot().Len())
	}
}

func TestCatalog_ConcurrentSearchDuringSwap(t *testing.T) {
	src := &fakeSource{recs: []domain.RestroomRecord{{ID: 1, BuildingName: "A", Latitude: duboisLat, Longitude: duboisLon}}}
	c := app.NewCatalog(src, nil, time.Minute)
	_ = c.Refresh(context.Background())
	svc := app.NewSearchService(c, kmOpts)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := svc.Search(context.Background(), domain.Query{Latitude: duboisLat, Longitude: duboisLon, Radius: 1})
				if err != nil || len(got) != 1 {
					t.Errorf("search during swap: %v %d", err, len(got))
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		c.Publish([]domain.RestroomRecord{{ID: int64(i), BuildingName: "A", Latitude: duboisLat, Longitude: duboisLon}}, "store")
	}
	wg.Wait()
}

func ptr[T any](v T) *T { return &v }
