// Package postgres serves restroom records from a Postgres database (the
// hosted deployment runs on Supabase).
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restroom_radar/internal/domain"
)

const selectColumns = `
  id,
  building_name,
  COALESCE(NULLIF(formatted_address, ''), address, ''),
  floor_or_area,
  rooms,
  latitude,
  longitude,
  restroom_type,
  multi_user_stalls,
  has_shower,
  staff_only_any,
  notes,
  COALESCE(natural_summary, ''),
  COALESCE(maps_url, ''),
  COALESCE(directions_url, '')`

const listRestroomsSQL = `SELECT` + selectColumns + `
FROM restrooms
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND within_campus_bbox
ORDER BY id`

const listMissingSummariesSQL = `SELECT` + selectColumns + `
FROM restrooms
WHERE latitude IS NOT NULL
  AND longitude IS NOT NULL
  AND COALESCE(natural_summary, '') = ''
  AND id > $1
ORDER BY id
LIMIT $2`

const updateSummarySQL = `
UPDATE restrooms
SET natural_summary = $1, updated_at = now()
WHERE id = $2`

type Repo struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Open builds a pool and verifies connectivity.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("open postgres: verify connection: %w", err)
	}
	return pool, nil
}

func (r *Repo) ListRestrooms(ctx context.Context) ([]domain.RestroomRecord, error) {
	rows, err := r.pool.Query(ctx, listRestroomsSQL)
	if err != nil {
		return nil, fmt.Errorf("list restrooms: %w", err)
	}
	return collect(rows)
}

func (r *Repo) ListMissingSummaries(ctx context.Context, afterID int64, limit int) ([]domain.RestroomRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx, listMissingSummariesSQL, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing summaries: %w", err)
	}
	return collect(rows)
}

func (r *Repo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	tag, err := r.pool.Exec(ctx, updateSummarySQL, summary, id)
	if err != nil {
		return fmt.Errorf("update summary %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update summary %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func collect(rows pgx.Rows) ([]domain.RestroomRecord, error) {
	out, err := pgx.CollectRows(rows, scanRestroom)
	if err != nil {
		return nil, fmt.Errorf("scan restrooms: %w", err)
	}
	if out == nil {
		out = []domain.RestroomRecord{}
	}
	return out, nil
}

func scanRestroom(row pgx.CollectableRow) (domain.RestroomRecord, error) {
	var rec domain.RestroomRecord
	var (
		floor, rooms, notes, rtype *string
		stalls                     *float64
	)
	err := row.Scan(
		&rec.ID,
		&rec.BuildingName,
		&rec.Address,
		&floor,
		&rooms,
		&rec.Latitude,
		&rec.Longitude,
		&rtype,
		&stalls,
		&rec.HasShower,
		&rec.StaffOnlyAny,
		&notes,
		&rec.NaturalSummary,
		&rec.MapsURL,
		&rec.DirectionsURL,
	)
	if err != nil {
		return rec, err
	}
	rec.FloorOrArea = blankToNil(floor)
	rec.Rooms = blankToNil(rooms)
	rec.Notes = blankToNil(notes)
	if rtype != nil {
		rec.Type = domain.ParseRestroomType(*rtype)
	}
	if stalls != nil {
		n := int(*stalls)
		rec.MultiUserStalls = &n
	}
	return rec, nil
}

func blankToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
