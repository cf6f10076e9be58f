package domain

import "context"

// RestroomSource yields the current full record set.
type RestroomSource interface {
	ListRestrooms(ctx context.Context) ([]RestroomRecord, error)
}

type RestroomRepository interface {
	RestroomSource

	// Write paths (offline summary backfill only)

	// ListMissingSummaries pages through records with an empty summary in id
	// order, starting after afterID.
	ListMissingSummaries(ctx context.Context, afterID int64, limit int) ([]RestroomRecord, error)
	UpdateSummary(ctx context.Context, id int64, summary string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
