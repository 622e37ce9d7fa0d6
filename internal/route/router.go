package route

import (
	"context"
	"errors"
	"math"

	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/track"
)

// Router turns an ordered list of waypoints into a drawable polyline for one
// travel mode.
type Router interface {
	Route(ctx context.Context, mode journey.Mode, waypoints []journey.Coordinate) ([]journey.Coordinate, error)
}

// Geocoder resolves a place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (journey.Coordinate, error)
}

var (
	ErrNotFound     = errors.New("route: place not found")
	ErrNeedTwoStops = errors.New("route: leg needs at least two waypoints")
)

// FallbackRouter draws great-circle arcs between consecutive waypoints. It
// serves ferry legs, which follow no road network, and any leg the routing
// service could not resolve.
type FallbackRouter struct {
	StepMeters float64 // spacing of generated points, default 2000
}

func (f *FallbackRouter) Route(_ context.Context, _ journey.Mode, waypoints []journey.Coordinate) ([]journey.Coordinate, error) {
	if len(waypoints) < 2 {
		return nil, ErrNeedTwoStops
	}
	step := f.StepMeters
	if step <= 0 {
		step = 2000
	}
	pts := []journey.Coordinate{waypoints[0]}
	for i := 1; i < len(waypoints); i++ {
		pts = append(pts, greatCircle(waypoints[i-1], waypoints[i], step)...)
	}
	return pts, nil
}

// greatCircle interpolates along the spherical arc from a to b, excluding a
// and including b, with roughly stepMeters between points.
func greatCircle(a, b journey.Coordinate, stepMeters float64) []journey.Coordinate {
	dist := track.Haversine(a, b)
	n := int(math.Ceil(dist / stepMeters))
	if n < 1 {
		n = 1
	}

	ax, ay, az := toVector(a)
	bx, by, bz := toVector(b)
	dot := ax*bx + ay*by + az*bz
	omega := math.Acos(math.Max(-1, math.Min(1, dot)))

	pts := make([]journey.Coordinate, 0, n)
	if omega < 1e-9 {
		return append(pts, b)
	}
	sinOmega := math.Sin(omega)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		wa := math.Sin((1-t)*omega) / sinOmega
		wb := math.Sin(t*omega) / sinOmega
		x := wa*ax + wb*bx
		y := wa*ay + wb*by
		z := wa*az + wb*bz
		pts = append(pts, journey.Coordinate{
			Lat: math.Atan2(z, math.Hypot(x, y)) * 180 / math.Pi,
			Lng: math.Atan2(y, x) * 180 / math.Pi,
		})
	}
	// The arc ends exactly at b, not at its rounded image.
	pts[len(pts)-1] = b
	return pts
}

func toVector(c journey.Coordinate) (x, y, z float64) {
	lat := c.Lat * math.Pi / 180
	lng := c.Lng * math.Pi / 180
	return math.Cos(lat) * math.Cos(lng), math.Cos(lat) * math.Sin(lng), math.Sin(lat)
}
