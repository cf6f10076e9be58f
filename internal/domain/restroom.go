package domain

import (
	"strings"
	"time"
)

type RestroomType string

const (
	RestroomUnspecified RestroomType = ""
	RestroomSingleUser  RestroomType = "single-user"
	RestroomMultiUser   RestroomType = "multi-user"
)

// ParseRestroomType normalizes a stored type tag. Unknown tags are kept verbatim
// so nothing the population job wrote is lost.
func ParseRestroomType(s string) RestroomType {
	t := strings.ToLower(strings.TrimSpace(s))
	switch t {
	case "", "restroom", "unspecified", "unknown":
		return RestroomUnspecified
	case "single-user", "single user", "single_user", "single":
		return RestroomSingleUser
	case "multi-user", "multi user", "multi_user", "multi":
		return RestroomMultiUser
	}
	return RestroomType(t)
}

type RestroomRecord struct {
	ID              int64
	BuildingName    string
	Address         string
	FloorOrArea     *string
	Rooms           *string
	Latitude        float64
	Longitude       float64
	Type            RestroomType
	MultiUserStalls *int
	HasShower       bool
	StaffOnlyAny    bool
	Notes           *string
	NaturalSummary  string // precomputed offline; opaque here
	MapsURL         string
	DirectionsURL   string
}

// Snapshot is the full record set served to searches. It is never mutated
// after it has been published.
type Snapshot struct {
	Records  []RestroomRecord
	LoadedAt time.Time
	Source   string // store|cache
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}
