package route

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/route2video/internal/journey"
)

type fakeRouter struct {
	calls int
	fail  bool
}

func (f *fakeRouter) Route(_ context.Context, _ journey.Mode, wps []journey.Coordinate) ([]journey.Coordinate, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("router down")
	}
	first, last := wps[0], wps[len(wps)-1]
	mid := journey.Coordinate{Lat: (first.Lat + last.Lat) / 2, Lng: (first.Lng + last.Lng) / 2}
	return []journey.Coordinate{first, mid, last}, nil
}

type fakeGeocoder struct {
	places map[string]journey.Coordinate
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, place string) (journey.Coordinate, error) {
	f.calls++
	c, ok := f.places[place]
	if !ok {
		return journey.Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, place)
	}
	return c, nil
}

func testGeocoder() *fakeGeocoder {
	return &fakeGeocoder{places: map[string]journey.Coordinate{
		"Geneva":    {Lat: 46.2044, Lng: 6.1432},
		"Chamonix":  {Lat: 45.9237, Lng: 6.8694},
		"Lac Blanc": {Lat: 45.9877, Lng: 6.8897},
	}}
}

func TestResolveInlinePointsWin(t *testing.T) {
	router := &fakeRouter{}
	geo := testGeocoder()
	r := NewResolver(router, geo)

	pause := 2.5
	j := &journey.Journey{Title: "t", Legs: []journey.LegSpec{
		{
			From: "Geneva", To: "Chamonix", Mode: journey.ModeDriving,
			Points:     []journey.Coordinate{{Lat: 46.2, Lng: 6.1}, {Lat: 46.0, Lng: 6.5}, {Lat: 45.9, Lng: 6.9}},
			PauseAfter: &pause,
		},
		{
			From: "Chamonix", To: "Lac Blanc", Mode: journey.ModeHiking,
			Points: []journey.Coordinate{{Lat: 45.9, Lng: 6.9}, {Lat: 45.99, Lng: 6.89}},
		},
	}}

	route, err := r.Resolve(context.Background(), j)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if router.calls != 0 || geo.calls != 0 {
		t.Errorf("inline points must bypass routing and geocoding (router=%d geo=%d)", router.calls, geo.calls)
	}
	if len(route.Legs[0].Coordinates) != 3 {
		t.Errorf("leg 0 points %d, want the 3 inline ones", len(route.Legs[0].Coordinates))
	}
	if route.Legs[0].PauseAfter != 2.5 {
		t.Errorf("explicit pause lost: %v", route.Legs[0].PauseAfter)
	}
	if route.Legs[1].PauseAfter != journey.DefaultPause {
		t.Errorf("missing pause must default to %v, got %v", journey.DefaultPause, route.Legs[1].PauseAfter)
	}
}

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>approach</name><trkseg>
    <trkpt lat="45.9237" lon="6.8694"><ele>1035</ele></trkpt>
    <trkpt lat="45.9301" lon="6.8755"><ele>1220</ele></trkpt>
    <trkpt lat="45.9356" lon="6.8810"><ele>1410</ele></trkpt>
  </trkseg></trk>
</gpx>`

func TestResolveGPXLeg(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "approach.gpx"), []byte(sampleGPX), 0644); err != nil {
		t.Fatalf("write gpx: %v", err)
	}

	router := &fakeRouter{}
	r := NewResolver(router, testGeocoder())
	r.GPXDir = dir

	j := &journey.Journey{Legs: []journey.LegSpec{
		{From: "Chamonix", To: "Lac Blanc", Mode: journey.ModeHiking, GPX: "approach.gpx"},
	}}
	route, err := r.Resolve(context.Background(), j)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if router.calls != 0 {
		t.Errorf("gpx legs must not hit the router")
	}
	pts := route.Legs[0].Coordinates
	if len(pts) != 3 {
		t.Fatalf("got %d gpx points, want 3", len(pts))
	}
	if pts[0].Lat != 45.9237 || pts[0].Lng != 6.8694 {
		t.Errorf("first gpx point %v", pts[0])
	}
}

func TestResolveRoutedLegSharesGeocodes(t *testing.T) {
	router := &fakeRouter{}
	geo := testGeocoder()
	r := NewResolver(router, geo)

	j := &journey.Journey{Legs: []journey.LegSpec{
		{From: "Geneva", To: "Chamonix", Mode: journey.ModeDriving},
		{From: "Chamonix", To: "Lac Blanc", Mode: journey.ModeHiking},
	}}
	route, err := r.Resolve(context.Background(), j)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if router.calls != 2 {
		t.Errorf("router calls %d, want 2", router.calls)
	}
	// Chamonix appears twice but is looked up once.
	if geo.calls != 3 {
		t.Errorf("geocoder calls %d, want 3", geo.calls)
	}
	if len(route.Legs[0].Coordinates) != 3 {
		t.Errorf("routed leg must carry the router's polyline")
	}
	if route.Legs[1].Coordinates[0] != (journey.Coordinate{Lat: 45.9237, Lng: 6.8694}) {
		t.Errorf("leg 1 must start at geocoded Chamonix, got %v", route.Legs[1].Coordinates[0])
	}
}

func TestResolveFallsBackWhenRouterFails(t *testing.T) {
	router := &fakeRouter{fail: true}
	geo := testGeocoder()
	r := NewResolver(router, geo)

	j := &journey.Journey{Legs: []journey.LegSpec{
		{From: "Geneva", To: "Chamonix", Mode: journey.ModeDriving},
	}}
	route, err := r.Resolve(context.Background(), j)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if router.calls != 1 {
		t.Errorf("router must have been tried once, got %d", router.calls)
	}

	pts := route.Legs[0].Coordinates
	if pts[0] != geo.places["Geneva"] || pts[len(pts)-1] != geo.places["Chamonix"] {
		t.Errorf("fallback line must connect the geocoded endpoints")
	}
	if len(pts) < 10 {
		t.Errorf("fallback line too sparse: %d points", len(pts))
	}
}

func TestResolveFerrySkipsRouter(t *testing.T) {
	router := &fakeRouter{}
	r := NewResolver(router, nil)

	j := &journey.Journey{Legs: []journey.LegSpec{
		{
			Mode:      journey.ModeFerry,
			From:      "Nice",
			FromCoord: &journey.Coordinate{Lat: 43.6961, Lng: 7.2719},
			ToCoord:   &journey.Coordinate{Lat: 42.6976, Lng: 9.4509},
		},
	}}
	route, err := r.Resolve(context.Background(), j)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if router.calls != 0 {
		t.Errorf("ferry legs must never hit the road router")
	}
	if len(route.Legs[0].Coordinates) < 2 {
		t.Errorf("ferry leg has no line")
	}
}

func TestResolveMissingDestination(t *testing.T) {
	r := NewResolver(&fakeRouter{}, testGeocoder())
	j := &journey.Journey{Legs: []journey.LegSpec{
		{From: "Geneva", Mode: journey.ModeDriving},
	}}
	if _, err := r.Resolve(context.Background(), j); !errors.Is(err, journey.ErrNoGeometry) {
		t.Errorf("got %v, want ErrNoGeometry", err)
	}
}

func TestResolveEmptyJourney(t *testing.T) {
	r := NewResolver(nil, nil)
	if _, err := r.Resolve(context.Background(), &journey.Journey{}); !errors.Is(err, journey.ErrEmptyRoute) {
		t.Errorf("got %v, want ErrEmptyRoute", err)
	}
}
