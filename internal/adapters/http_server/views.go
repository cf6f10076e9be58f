package httpserver

import (
	"math"

	"restroom_radar/internal/app"
	"restroom_radar/internal/domain"
	"restroom_radar/internal/geo"
)

type restroomView struct {
	ID              int64    `json:"id"`
	BuildingName    string   `json:"building_name"`
	FloorOrArea     *string  `json:"floor_or_area"`
	Rooms           *string  `json:"rooms"`
	Address         string   `json:"address"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	RestroomType    string   `json:"restroom_type"`
	MultiUserStalls *int     `json:"multi_user_stalls"`
	HasShower       bool     `json:"has_shower"`
	StaffOnlyAny    bool     `json:"staff_only_any"`
	Notes           *string  `json:"notes"`
	MapsURL         string   `json:"maps_url"`
	DirectionsURL   string   `json:"directions_url"`
	Distance        float64  `json:"distance"`
	Unit            geo.Unit `json:"unit"`
	ETAMinutes      int      `json:"eta_minutes"`
	NaturalSummary  string   `json:"natural_summary"`
}

type groupView struct {
	BuildingName string         `json:"building_name"`
	Address      string         `json:"address"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	Distance     float64        `json:"distance"`
	Unit         geo.Unit       `json:"unit"`
	ETAMinutes   int            `json:"eta_minutes"`
	MapsURL      string         `json:"maps_url"`
	Restrooms    []restroomView `json:"restrooms"`
}

// round2 is display rounding only; ordering was decided on full precision.
func round2(f float64) float64 { return math.Round(f*100) / 100 }

func toGroupViews(groups []domain.BuildingGroup, unit geo.Unit) []groupView {
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		gv := groupView{
			BuildingName: g.BuildingName,
			Address:      g.Address,
			Latitude:     g.Latitude,
			Longitude:    g.Longitude,
			Distance:     round2(g.Distance),
			Unit:         unit,
			ETAMinutes:   g.ETAMinutes,
			MapsURL:      g.MapsURL,
			Restrooms:    make([]restroomView, 0, len(g.Restrooms)),
		}
		for _, r := range g.Restrooms {
			summary := r.NaturalSummary
			if summary == "" {
				summary = app.NaturalSummary(r.RestroomRecord)
			}
			rtype := string(r.Type)
			if r.Type == domain.RestroomUnspecified {
				rtype = "restroom"
			}
			gv.Restrooms = append(gv.Restrooms, restroomView{
				ID:              r.ID,
				BuildingName:    r.BuildingName,
				FloorOrArea:     r.FloorOrArea,
				Rooms:           r.Rooms,
				Address:         r.Address,
				Latitude:        r.Latitude,
				Longitude:       r.Longitude,
				RestroomType:    rtype,
				MultiUserStalls: r.MultiUserStalls,
				HasShower:       r.HasShower,
				StaffOnlyAny:    r.StaffOnlyAny,
				Notes:           r.Notes,
				MapsURL:         r.MapsURL,
				DirectionsURL:   r.DirectionsURL,
				Distance:        round2(r.Distance),
				Unit:            unit,
				ETAMinutes:      r.ETAMinutes,
				NaturalSummary:  summary,
			})
		}
		out = append(out, gv)
	}
	return out
}
