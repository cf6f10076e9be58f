package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"restroom_radar/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListRestrooms(ctx context.Context) ([]domain.RestroomRecord, error) {
	rows, err := r.db.QueryContext(ctx, listRestroomsSQL)
	if err != nil {
		return nil, fmt.Errorf("list restrooms: %w", err)
	}
	return scanRestrooms(rows)
}

func (r *Repo) ListMissingSummaries(ctx context.Context, afterID int64, limit int) ([]domain.RestroomRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.QueryContext(ctx, listMissingSummariesSQL, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list missing summaries: %w", err)
	}
	return scanRestrooms(rows)
}

func (r *Repo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	res, err := r.db.ExecContext(ctx, updateSummarySQL, summary, id)
	if err != nil {
		return fmt.Errorf("update summary %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update summary %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanRestrooms(rows *sql.Rows) ([]domain.RestroomRecord, error) {
	defer rows.Close()

	out := make([]domain.RestroomRecord, 0, 256)
	for rows.Next() {
		var rec domain.RestroomRecord
		var (
			floor, rooms, notes         sql.NullString
			rtype, summary, maps, direc sql.NullString
			stalls                      sql.NullFloat64
		)
		if err := rows.Scan(
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
			&summary,
			&maps,
			&direc,
		); err != nil {
			return nil, fmt.Errorf("scan restroom: %w", err)
		}

		rec.FloorOrArea = nullStr(floor)
		rec.Rooms = nullStr(rooms)
		rec.Notes = nullStr(notes)
		rec.Type = domain.ParseRestroomType(rtype.String)
		if stalls.Valid {
			n := int(stalls.Float64)
			rec.MultiUserStalls = &n
		}
		rec.NaturalSummary = summary.String
		rec.MapsURL = maps.String
		rec.DirectionsURL = direc.String

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restrooms: %w", err)
	}
	return out, nil
}

// nullStr maps NULL and blank strings to nil.
func nullStr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
