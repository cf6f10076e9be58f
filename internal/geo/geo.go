// Package geo holds the great-circle math used by proximity search.
package geo

import (
	"fmt"
	"math"
	"strings"
)

type Unit string

const (
	Kilometers Unit = "km"
	Miles      Unit = "mi"
)

const (
	earthRadiusKm = 6371.0
	earthRadiusMi = 3958.8
)

// ParseUnit accepts km/mi and their long forms.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}

// EarthRadius returns the spherical earth radius in u.
func (u Unit) EarthRadius() float64 {
	if u == Miles {
		return earthRadiusMi
	}
	return earthRadiusKm
}

// DefaultWalkingSpeed is the average walking speed in u per hour.
func (u Unit) DefaultWalkingSpeed() float64 {
	if u == Miles {
		return 3.1
	}
	return 5.0
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine returns the great-circle distance between two points in u.
func Haversine(lat1, lon1, lat2, lon2 float64, u Unit) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a slightly outside [0,1] near antipodal or coincident points
	a = math.Max(0, math.Min(1, a))
	c := 2 * math.Asin(math.Sqrt(a))

	return u.EarthRadius() * c
}

// WalkingETA converts a distance into whole walking minutes, rounding up,
// never less than one minute.
func WalkingETA(distance, speedPerHour float64) int {
	if speedPerHour <= 0 {
		return 1
	}
	m := int(math.Ceil(distance / speedPerHour * 60))
	if m < 1 {
		return 1
	}
	return m
}

// ValidLatitude reports whether lat is a number in [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is a number in [-180, 180].
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}
