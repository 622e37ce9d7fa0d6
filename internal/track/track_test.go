package track

import (
	"math"
	"testing"

	"github.com/ivlev/route2video/internal/journey"
)

func line(n int, lat0, lng0, lat1, lng1 float64) []journey.Coordinate {
	pts := make([]journey.Coordinate, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = journey.Coordinate{
			Lat: lat0 + (lat1-lat0)*t,
			Lng: lng0 + (lng1-lng0)*t,
		}
	}
	return pts
}

func twoLegs() []journey.Leg {
	return []journey.Leg{
		{Coordinates: line(10, 46.0, 6.0, 46.5, 6.5), Mode: journey.ModeDriving},
		{Coordinates: line(10, 46.5, 6.5, 47.0, 7.0), Mode: journey.ModeHiking},
	}
}

func TestNewThresholds(t *testing.T) {
	th, err := NewThresholds(twoLegs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(th) != 2 {
		t.Fatalf("expected 2 thresholds, got %d", len(th))
	}
	if math.Abs(th[0]-0.5) > 1e-9 {
		t.Errorf("equal point counts must split at 0.5, got %f", th[0])
	}
	if th[1] != 1 {
		t.Errorf("last threshold must be exactly 1, got %f", th[1])
	}
}

func TestNewThresholdsWeighting(t *testing.T) {
	legs := []journey.Leg{
		{Coordinates: line(30, 0, 0, 1, 1)},
		{Coordinates: line(10, 1, 1, 2, 2)},
	}
	th, err := NewThresholds(legs)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(th[0]-0.75) > 1e-9 {
		t.Errorf("30/40 points must give threshold 0.75, got %f", th[0])
	}
}

func TestNewThresholdsErrors(t *testing.T) {
	if _, err := NewThresholds(nil); err != journey.ErrEmptyRoute {
		t.Errorf("empty route: got %v", err)
	}
	legs := []journey.Leg{{Coordinates: nil}}
	if _, err := NewThresholds(legs); err != journey.ErrEmptyLeg {
		t.Errorf("empty leg: got %v", err)
	}
}

func TestSegmentInfoSweep(t *testing.T) {
	legs := []journey.Leg{
		{Coordinates: line(5, 0, 0, 1, 1)},
		{Coordinates: line(15, 1, 1, 2, 2)},
		{Coordinates: line(10, 2, 2, 3, 3)},
	}
	th, err := NewThresholds(legs)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int]bool)
	prevLeg := 0
	for i := 0; i <= 1000; i++ {
		p := float64(i) / 1000
		leg, local := SegmentInfo(p, th)
		if leg < 0 || leg >= len(legs) {
			t.Fatalf("leg index out of range at p=%f: %d", p, leg)
		}
		if local < 0 || local > 1 {
			t.Fatalf("local progress out of [0,1] at p=%f: %f", p, local)
		}
		if leg < prevLeg {
			t.Fatalf("leg index went backwards at p=%f: %d -> %d", p, prevLeg, leg)
		}
		prevLeg = leg
		seen[leg] = true
	}
	for i := range legs {
		if !seen[i] {
			t.Errorf("leg %d never visited during sweep", i)
		}
	}

	if leg, local := SegmentInfo(1.0, th); leg != len(legs)-1 || local != 1 {
		t.Errorf("progress 1 must clamp to final leg end, got leg=%d local=%f", leg, local)
	}
	if leg, local := SegmentInfo(2.0, th); leg != len(legs)-1 || local != 1 {
		t.Errorf("progress beyond 1 must clamp, got leg=%d local=%f", leg, local)
	}
	if leg, _ := SegmentInfo(0, th); leg != 0 {
		t.Errorf("progress 0 must be leg 0, got %d", leg)
	}
}

func TestInterpolate(t *testing.T) {
	pts := []journey.Coordinate{{0, 0}, {1, 1}}
	mid := Interpolate(pts, 0.5)
	if math.Abs(mid.Lat-0.5) > 1e-9 || math.Abs(mid.Lng-0.5) > 1e-9 {
		t.Errorf("midpoint wrong: %+v", mid)
	}
	if got := Interpolate(pts, 0); got != pts[0] {
		t.Errorf("t=0 must be first point, got %+v", got)
	}
	if got := Interpolate(pts, 1); got != pts[1] {
		t.Errorf("t=1 must be last point, got %+v", got)
	}
	if got := Interpolate(pts, 2); got != pts[1] {
		t.Errorf("t beyond 1 must clamp, got %+v", got)
	}

	single := []journey.Coordinate{{3, 4}}
	if got := Interpolate(single, 0.7); got != single[0] {
		t.Errorf("single point polyline must return its point, got %+v", got)
	}
}

func TestLookahead(t *testing.T) {
	pts := line(10, 0, 0, 9, 9)
	la := Lookahead(pts, 0, 3)
	if la != pts[3] {
		t.Errorf("lookahead from start: got %+v, want %+v", la, pts[3])
	}
	la = Lookahead(pts, 1, 5)
	if la != pts[9] {
		t.Errorf("lookahead must clamp to the end, got %+v", la)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	paris := journey.Coordinate{Lat: 48.8566, Lng: 2.3522}
	london := journey.Coordinate{Lat: 51.5074, Lng: -0.1278}
	d := Haversine(paris, london)
	// Roughly 343.5 km.
	if d < 340000 || d > 348000 {
		t.Errorf("Paris-London distance off: got %.1f km", d/1000)
	}
	if Haversine(paris, paris) != 0 {
		t.Errorf("distance to self must be zero")
	}
}

func TestModeDistance(t *testing.T) {
	legs := twoLegs()
	hiking := ModeDistance(legs, journey.ModeHiking)
	driving := ModeDistance(legs, journey.ModeDriving)
	if hiking <= 0 {
		t.Errorf("hiking leg must contribute distance")
	}
	if ModeDistance(legs, journey.ModeFerry) != 0 {
		t.Errorf("absent mode must sum to zero")
	}
	total := PathDistance(legs[0].Coordinates) + PathDistance(legs[1].Coordinates)
	if math.Abs(hiking+driving-total) > 1e-6 {
		t.Errorf("per-mode sums must partition the total")
	}
}
