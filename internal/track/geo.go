package track

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/ivlev/route2video/internal/journey"
)

const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two coordinates in meters.
func Haversine(a, b journey.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PathDistance sums the great-circle length of a polyline in meters.
func PathDistance(pts []journey.Coordinate) float64 {
	var d float64
	for i := 1; i < len(pts); i++ {
		d += Haversine(pts[i-1], pts[i])
	}
	return d
}

// ModeDistance sums the length of every leg tagged with the given travel mode.
func ModeDistance(legs []journey.Leg, mode journey.Mode) float64 {
	var d float64
	for _, leg := range legs {
		if leg.Mode == mode {
			d += PathDistance(leg.Coordinates)
		}
	}
	return d
}

// Bounds returns the bounding box of every coordinate in the legs.
func Bounds(legs []journey.Leg) orb.Bound {
	var mp orb.MultiPoint
	for _, leg := range legs {
		for _, c := range leg.Coordinates {
			mp = append(mp, orb.Point{c.Lng, c.Lat})
		}
	}
	return mp.Bound()
}

// BoundsOf returns the bounding box of a single polyline.
func BoundsOf(pts []journey.Coordinate) orb.Bound {
	mp := make(orb.MultiPoint, 0, len(pts))
	for _, c := range pts {
		mp = append(mp, orb.Point{c.Lng, c.Lat})
	}
	return mp.Bound()
}

// Center returns the midpoint of a bound as a coordinate.
func Center(b orb.Bound) journey.Coordinate {
	c := b.Center()
	return journey.Coordinate{Lat: c.Lat(), Lng: c.Lon()}
}
