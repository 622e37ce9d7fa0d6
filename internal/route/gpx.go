package route

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/ivlev/route2video/internal/journey"
)

// LoadGPX flattens a GPX file into one polyline. Track segments are used in
// file order; files carrying only routes fall back to route points.
func LoadGPX(path string) ([]journey.Coordinate, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("route: parse gpx %s: %w", path, err)
	}

	var pts []journey.Coordinate
	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				pts = append(pts, journey.Coordinate{Lat: p.Latitude, Lng: p.Longitude})
			}
		}
	}
	if len(pts) == 0 {
		for _, rte := range g.Routes {
			for _, p := range rte.Points {
				pts = append(pts, journey.Coordinate{Lat: p.Latitude, Lng: p.Longitude})
			}
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("route: gpx %s has no points: %w", path, journey.ErrEmptyLeg)
	}
	return pts, nil
}
