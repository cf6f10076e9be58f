package app

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"restroom_radar/internal/adapters/observability"
	"restroom_radar/internal/domain"
	"restroom_radar/internal/geo"
)

// SnapshotProvider hands out the current record snapshot, nil if none was ever loaded.
type SnapshotProvider interface {
	Snapshot() *domain.Snapshot
}

type SearchOptions struct {
	Unit         geo.Unit
	WalkingSpeed float64 // Unit per hour
	MaxGroups    int     // 0 = no cap
}

type SearchService struct {
	snapshots SnapshotProvider
	opts      SearchOptions
}

func NewSearchService(p SnapshotProvider, opts SearchOptions) *SearchService {
	if opts.Unit == "" {
		opts.Unit = geo.Kilometers
	}
	if opts.WalkingSpeed <= 0 {
		opts.WalkingSpeed = opts.Unit.DefaultWalkingSpeed()
	}
	return &SearchService{snapshots: p, opts: opts}
}

func (s *SearchService) Unit() geo.Unit { return s.opts.Unit }

func (s *SearchService) Search(ctx context.Context, q domain.Query) ([]domain.BuildingGroup, error) {
	if err := ValidateQuery(q); err != nil {
		observability.ObserveSearch("invalid", 0, 0)
		return nil, err
	}
	snap := s.snapshots.Snapshot()
	if snap == nil {
		observability.ObserveSearch("unavailable", 0, 0)
		return nil, domain.ErrDataUnavailable
	}

	start := time.Now()
	opts := s.opts
	if q.Limit > 0 && (opts.MaxGroups == 0 || q.Limit < opts.MaxGroups) {
		opts.MaxGroups = q.Limit
	}
	groups := FindNearby(snap.Records, q, opts)
	observability.ObserveSearch("ok", len(groups), time.Since(start))

	log.Debug().
		Float64("lat", q.Latitude).
		Float64("lon", q.Longitude).
		Float64("radius", q.Radius).
		Int("records", len(snap.Records)).
		Int("groups", len(groups)).
		Msg("search")
	return groups, nil
}

func ValidateQuery(q domain.Query) error {
	var verr domain.ValidationError
	if !geo.ValidLatitude(q.Latitude) {
		verr.Add("latitude", "must be between -90 and 90")
	}
	if !geo.ValidLongitude(q.Longitude) {
		verr.Add("longitude", "must be between -180 and 180")
	}
	if math.IsNaN(q.Radius) || math.IsInf(q.Radius, 0) || q.Radius <= 0 {
		verr.Add("radius", "must be a positive number")
	}
	if q.Limit < 0 {
		verr.Add("limit", "must not be negative")
	}
	if verr.Empty() {
		return nil
	}
	return &verr
}

// FindNearby filters records to those within q.Radius (inclusive), groups them
// by exact building name and orders both levels by distance. It does not
// validate q and never touches records.
func FindNearby(records []domain.RestroomRecord, q domain.Query, opts SearchOptions) []domain.BuildingGroup {
	byBuilding := make(map[string][]domain.RestroomResult)
	for _, rec := range records {
		d := geo.Haversine(q.Latitude, q.Longitude, rec.Latitude, rec.Longitude, opts.Unit)
		if d > q.Radius {
			continue
		}
		byBuilding[rec.BuildingName] = append(byBuilding[rec.BuildingName], domain.RestroomResult{
			RestroomRecord: rec,
			Distance:       d,
			ETAMinutes:     geo.WalkingETA(d, opts.WalkingSpeed),
		})
	}

	groups := make([]domain.BuildingGroup, 0, len(byBuilding))
	for name, rs := range byBuilding {
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].Distance != rs[j].Distance {
				return rs[i].Distance < rs[j].Distance
			}
			return rs[i].ID < rs[j].ID
		})
		nearest := rs[0]
		groups = append(groups, domain.BuildingGroup{
			BuildingName: name,
			Address:      nearest.Address,
			Latitude:     nearest.Latitude,
			Longitude:    nearest.Longitude,
			Distance:     nearest.Distance,
			ETAMinutes:   nearest.ETAMinutes,
			MapsURL:      nearest.MapsURL,
			Restrooms:    rs,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Distance != groups[j].Distance {
			return groups[i].Distance < groups[j].Distance
		}
		return groups[i].BuildingName < groups[j].BuildingName
	})
	if opts.MaxGroups > 0 && len(groups) > opts.MaxGroups {
		groups = groups[:opts.MaxGroups]
	}
	return groups
}
