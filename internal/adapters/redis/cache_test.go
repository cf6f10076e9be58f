package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "restroom_radar/internal/adapters/redis"
	"restroom_radar/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_MissSetHit(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var out []domain.RestroomRecord
	ok, err := c.Get(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	floor := "Lower level"
	in := []domain.RestroomRecord{{ID: 9, BuildingName: "Campus Center", FloorOrArea: &floor, Latitude: 42.39, Longitude: -72.52}}
	if err := c.Set(ctx, "k", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "k", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].ID != 9 || out[0].FloorOrArea == nil || *out[0].FloorOrArea != floor {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []int{1}, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(6 * time.Second)

	var out []int
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected expiry")
	}
}

func TestCache_DelAndCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := mr.Set("bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out []int
	ok, err := c.Get(ctx, "bad", &out)
	if ok || err != nil {
		t.Fatalf("corrupt entry should read as miss, got ok=%v err=%v", ok, err)
	}
	if mr.Exists("bad") {
		t.Fatalf("corrupt entry should be dropped")
	}

	_ = c.Set(ctx, "k", []int{1}, 60)
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("k") {
		t.Fatalf("expected key deleted")
	}
}

func TestCache_ServerDownIsError(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	var out []int
	if _, err := c.Get(context.Background(), "k", &out); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
