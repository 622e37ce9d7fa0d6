package route

import (
	"context"
	"errors"
	"testing"

	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/track"
)

var (
	paris  = journey.Coordinate{Lat: 48.8566, Lng: 2.3522}
	london = journey.Coordinate{Lat: 51.5074, Lng: -0.1278}
)

func TestFallbackRouteEndpointsAndSpacing(t *testing.T) {
	f := &FallbackRouter{StepMeters: 2000}
	pts, err := f.Route(context.Background(), journey.ModeFerry, []journey.Coordinate{paris, london})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if pts[0] != paris {
		t.Errorf("path must start at the first waypoint, got %v", pts[0])
	}
	if pts[len(pts)-1] != london {
		t.Errorf("path must end at the last waypoint, got %v", pts[len(pts)-1])
	}

	// Paris-London is ~344 km, so 2 km steps give ~170 points.
	if len(pts) < 150 || len(pts) > 200 {
		t.Errorf("unexpected point count %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		d := track.Haversine(pts[i-1], pts[i])
		if d > 2500 {
			t.Fatalf("gap of %.0f m between points %d and %d", d, i-1, i)
		}
	}
}

func TestFallbackRoutePassesThroughVia(t *testing.T) {
	via := journey.Coordinate{Lat: 50.0, Lng: 1.5}
	f := &FallbackRouter{}
	pts, err := f.Route(context.Background(), journey.ModeDriving, []journey.Coordinate{paris, via, london})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	found := false
	for _, p := range pts {
		if p == via {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("path must pass exactly through the via waypoint")
	}
}

func TestFallbackRouteRejectsSingleWaypoint(t *testing.T) {
	f := &FallbackRouter{}
	if _, err := f.Route(context.Background(), journey.ModeDriving, []journey.Coordinate{paris}); !errors.Is(err, ErrNeedTwoStops) {
		t.Errorf("got %v, want ErrNeedTwoStops", err)
	}
}

func TestGreatCircleShortHop(t *testing.T) {
	a := journey.Coordinate{Lat: 46.0, Lng: 6.0}
	b := journey.Coordinate{Lat: 46.00001, Lng: 6.00001}
	pts := greatCircle(a, b, 2000)
	if len(pts) != 1 || pts[0] != b {
		t.Errorf("a hop below one step must yield just the endpoint, got %v", pts)
	}
}
