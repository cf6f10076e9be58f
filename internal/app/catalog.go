package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"restroom_radar/internal/adapters/observability"
	"restroom_radar/internal/domain"
)

const SnapshotCacheKey = "restrooms:snapshot:v1"

// Catalog owns the record snapshot searches read from. Refreshes replace the
// snapshot wholesale; readers never see a partial update.
type Catalog struct {
	src      domain.RestroomSource
	cache    domain.Cache
	cacheTTL time.Duration
	current  atomic.Pointer[domain.Snapshot]
	now      func() time.Time
}

func NewCatalog(src domain.RestroomSource, cache domain.Cache, ttl time.Duration) *Catalog {
	return &Catalog{src: src, cache: cache, cacheTTL: ttl, now: time.Now}
}

// Snapshot returns the published snapshot, or nil before the first successful load.
func (c *Catalog) Snapshot() *domain.Snapshot { return c.current.Load() }

// Publish swaps in records directly, bypassing source and cache.
func (c *Catalog) Publish(records []domain.RestroomRecord, source string) {
	snap := &domain.Snapshot{Records: records, LoadedAt: c.now(), Source: source}
	c.current.Store(snap)
	observability.SetSnapshotRecords(len(records))
}

// Refresh loads the record set (cache first, then store) and publishes it.
// On failure the previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.cache != nil {
		var recs []domain.RestroomRecord
		ok, err := c.cache.Get(ctx, SnapshotCacheKey, &recs)
		if err != nil {
			log.Warn().Err(err).Msg("snapshot cache read failed; falling back to store")
		}
		if ok && err == nil {
			c.Publish(recs, "cache")
			observability.ObserveSnapshotRefresh("cache")
			return nil
		}
	}

	recs, err := c.src.ListRestrooms(ctx)
	if err != nil {
		observability.ObserveSnapshotRefresh("error")
		return errors.Join(domain.ErrDataUnavailable, fmt.Errorf("load restrooms: %w", err))
	}
	if recs == nil {
		recs = []domain.RestroomRecord{}
	}
	c.Publish(recs, "store")
	observability.ObserveSnapshotRefresh("store")

	if c.cache != nil {
		if err := c.cache.Set(ctx, SnapshotCacheKey, recs, int(c.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Msg("snapshot cache write failed")
		}
	}
	return nil
}

// Invalidate drops the cached snapshot so the next Refresh reads the store.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Del(ctx, SnapshotCacheKey)
}

// Run refreshes every interval until ctx is done.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := c.Refresh(ctx); err != nil {
				log.Warn().Err(err).Int("records", c.Snapshot().Len()).Msg("snapshot refresh failed; keeping previous")
				continue
			}
			snap := c.Snapshot()
			log.Info().Int("records", snap.Len()).Str("source", snap.Source).Msg("snapshot refreshed")
		}
	}
}
