package domain

// Query is a proximity search. Radius is in the deployment's distance unit.
type Query struct {
	Latitude  float64
	Longitude float64
	Radius    float64
	Limit     int // max groups; 0 means no cap
}

type RestroomResult struct {
	RestroomRecord
	Distance   float64
	ETAMinutes int
}

type BuildingGroup struct {
	BuildingName string
	Address      string
	Latitude     float64
	Longitude    float64
	Distance     float64 // minimum over Restrooms
	ETAMinutes   int
	MapsURL      string
	Restrooms    []RestroomResult
}
