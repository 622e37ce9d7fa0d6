package anim

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/ivlev/route2video/internal/icon"
	"github.com/ivlev/route2video/internal/journey"
)

type fakeMarker struct {
	at      journey.Coordinate
	style   MarkerStyle
	opacity float64
}

type fakeLabel struct {
	at      journey.Coordinate
	text    string
	opacity float64
}

type fakeIcon struct {
	kind    icon.Kind
	at      journey.Coordinate
	p       icon.Placement
	opacity float64
	visible bool
}

// fakeSurface records every draw instruction so tests can inspect the visual
// state without a live rendering surface.
type fakeSurface struct {
	camAt      journey.Coordinate
	camZoom    float64
	camSet     bool
	camSets    int
	paths      map[string][]journey.Coordinate
	pathStyles map[string]PathStyle
	markers    map[string]fakeMarker
	labels     map[string]fakeLabel
	icon       fakeIcon
	iconSets   int
	overlays   map[OverlayKind]Overlay
	projectErr error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		paths:      make(map[string][]journey.Coordinate),
		pathStyles: make(map[string]PathStyle),
		markers:    make(map[string]fakeMarker),
		labels:     make(map[string]fakeLabel),
		overlays:   make(map[OverlayKind]Overlay),
	}
}

func (f *fakeSurface) SetCamera(at journey.Coordinate, zoom float64, animate bool) {
	f.camAt, f.camZoom, f.camSet = at, zoom, true
	f.camSets++
}

func (f *fakeSurface) SetPath(id string, pts []journey.Coordinate, style PathStyle) {
	cp := make([]journey.Coordinate, len(pts))
	copy(cp, pts)
	f.paths[id] = cp
	f.pathStyles[id] = style
}

func (f *fakeSurface) SetMarker(id string, at journey.Coordinate, style MarkerStyle, opacity float64) {
	f.markers[id] = fakeMarker{at: at, style: style, opacity: opacity}
}

func (f *fakeSurface) SetLabel(id string, at journey.Coordinate, text string, style LabelStyle, opacity float64) {
	f.labels[id] = fakeLabel{at: at, text: text, opacity: opacity}
}

func (f *fakeSurface) SetIcon(kind icon.Kind, at journey.Coordinate, p icon.Placement, opacity float64) {
	f.icon = fakeIcon{kind: kind, at: at, p: p, opacity: opacity, visible: true}
	f.iconSets++
}

func (f *fakeSurface) HideIcon() {
	f.icon.visible = false
}

func (f *fakeSurface) SetOverlay(o Overlay) {
	f.overlays[o.Kind] = o
}

func (f *fakeSurface) Project(c journey.Coordinate) (float64, float64, error) {
	if f.projectErr != nil {
		return 0, 0, f.projectErr
	}
	// Flat projection is plenty for direction sampling in tests.
	return c.Lng * 1000, -c.Lat * 1000, nil
}

func line(n int, lat0, lng0, lat1, lng1 float64) []journey.Coordinate {
	pts := make([]journey.Coordinate, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = journey.Coordinate{Lat: lat0 + (lat1-lat0)*t, Lng: lng0 + (lng1-lng0)*t}
	}
	return pts
}

// driveThenHike is the two-leg reference route: 10 driving points to "X",
// then 10 hiking points to "Y".
func driveThenHike() *journey.Route {
	return &journey.Route{Legs: []journey.Leg{
		{
			Coordinates: line(10, 46.0, 6.0, 46.5, 6.5),
			Mode:        journey.ModeDriving,
			Icon:        icon.KindCar,
			From:        "Start",
			To:          "X",
			PauseAfter:  1.0,
		},
		{
			Coordinates: line(10, 46.5, 6.5, 47.0, 7.0),
			Mode:        journey.ModeHiking,
			Icon:        icon.KindBackpacker,
			From:        "X",
			To:          "Y",
			PauseAfter:  1.0,
		},
	}}
}

func newTestRenderer(t *testing.T, route *journey.Route) (*Renderer, *fakeSurface) {
	t.Helper()
	surface := newFakeSurface()
	r, err := NewRenderer(Config{Title: "Trip", Date: "2025", Stamp: "summer"}, route, surface)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, surface
}

func TestNewRendererRejectsMalformedRoutes(t *testing.T) {
	if _, err := NewRenderer(Config{}, &journey.Route{}, newFakeSurface()); !errors.Is(err, journey.ErrEmptyRoute) {
		t.Errorf("empty route: got %v", err)
	}

	bad := &journey.Route{Legs: []journey.Leg{{Mode: journey.ModeDriving}}}
	if _, err := NewRenderer(Config{}, bad, newFakeSurface()); !errors.Is(err, journey.ErrEmptyLeg) {
		t.Errorf("empty leg: got %v", err)
	}
}

func TestTitlePhase(t *testing.T) {
	r, surface := newTestRenderer(t, driveThenHike())

	r.Render(PhaseTitle, 0)
	if !surface.camSet {
		t.Fatalf("first title frame must frame the overview")
	}
	if surface.camSets != 1 {
		t.Fatalf("expected exactly one camera set, got %d", surface.camSets)
	}
	if o := surface.overlays[OverlayTitle]; o.Opacity != 0 {
		t.Errorf("title opacity at p=0 must be 0, got %f", o.Opacity)
	}
	if o := surface.overlays[OverlayStamp]; o.Opacity != 1 || o.Title != "summer" {
		t.Errorf("corner stamp must appear with the title: %+v", o)
	}

	r.Render(PhaseTitle, 0.075)
	if o := surface.overlays[OverlayTitle]; math.Abs(o.Opacity-0.5) > 1e-9 {
		t.Errorf("mid fade-in opacity: got %f, want 0.5", o.Opacity)
	}
	if surface.camSets != 1 {
		t.Errorf("camera must be framed on the very first call only, got %d sets", surface.camSets)
	}

	r.Render(PhaseTitle, 0.5)
	if o := surface.overlays[OverlayTitle]; o.Opacity != 1 {
		t.Errorf("hold opacity: got %f", o.Opacity)
	}
	if o := surface.overlays[OverlayTitle]; o.Title != "Trip" || o.Subtitle != "2025" {
		t.Errorf("title text lost: %+v", o)
	}

	r.Render(PhaseTitle, 0.925)
	if o := surface.overlays[OverlayTitle]; math.Abs(o.Opacity-0.5) > 1e-9 {
		t.Errorf("mid fade-out opacity: got %f, want 0.5", o.Opacity)
	}
}

func TestPanPlacesStartAndTrailsCamera(t *testing.T) {
	route := driveThenHike()
	r, surface := newTestRenderer(t, route)

	r.Render(PhaseTitle, 0.5)
	r.Render(PhasePan, 0)

	m, ok := surface.markers["start"]
	if !ok || m.opacity != 1 {
		t.Fatalf("pan entry must place the start marker: %+v", m)
	}
	if l := surface.labels["start"]; l.text != "Start" {
		t.Errorf("start label text: got %q", l.text)
	}
	if o := surface.overlays[OverlayTitle]; o.Opacity != 0 {
		t.Errorf("title must be cleared when the pan starts")
	}
	if !r.State().CamSeeded {
		t.Fatalf("pan entry must seed the smoothed camera")
	}

	start := route.Start()
	prev := math.Hypot(surface.camAt.Lat-start.Lat, surface.camAt.Lng-start.Lng)
	for i := 0; i < 40; i++ {
		r.Render(PhasePan, 1)
		d := math.Hypot(surface.camAt.Lat-start.Lat, surface.camAt.Lng-start.Lng)
		if d > prev+1e-12 {
			t.Fatalf("camera must trail monotonically toward the start, went %f -> %f", prev, d)
		}
		prev = d
	}
	if prev > 0.01 {
		t.Errorf("camera never converged on the start point, still %f away", prev)
	}
}

// TestRouteScenarioDriveThenHike is the end-to-end check: leg 0 for the first
// half of progress, leg 1 for the second, exactly one pause at the boundary,
// waypoint label X shown and faded, and the end card reporting only the
// hiking distance.
func TestRouteScenarioDriveThenHike(t *testing.T) {
	route := driveThenHike()
	r, surface := newTestRenderer(t, route)

	var (
		pauses     []PauseSignal
		shownFlips int
		fadedFlips int
	)
	prevShown, prevFaded := false, false

	for i := 0; i <= 1000; i++ {
		p := float64(i) / 1000
		sig := r.Render(PhaseRoute, p)
		if sig.ShouldPause {
			pauses = append(pauses, sig)
		}

		st := r.State()
		if st.WaypointShown[0] != prevShown {
			if prevShown {
				t.Fatalf("waypoint shown flag reverted at p=%f", p)
			}
			shownFlips++
			prevShown = st.WaypointShown[0]
		}
		if st.WaypointFaded[0] != prevFaded {
			if prevFaded {
				t.Fatalf("waypoint faded flag reverted at p=%f", p)
			}
			if !st.WaypointShown[0] {
				t.Fatalf("waypoint faded before it was shown at p=%f", p)
			}
			fadedFlips++
			prevFaded = st.WaypointFaded[0]
		}
	}

	if len(pauses) != 1 {
		t.Fatalf("expected exactly one pause, got %d", len(pauses))
	}
	if pauses[0].AfterLeg != 0 || pauses[0].Duration != 1.0 {
		t.Errorf("pause must follow leg 0 with its configured duration: %+v", pauses[0])
	}
	if st := r.State(); !st.FurniturePlaced || !st.IconsVisible {
		t.Errorf("route phase must have placed furniture and activated the icon layer")
	}
	if shownFlips != 1 || fadedFlips != 1 {
		t.Errorf("waypoint transitions must be one-shot: shown=%d faded=%d", shownFlips, fadedFlips)
	}

	if l := surface.labels["wp-0"]; l.text != "X" {
		t.Errorf("waypoint label text: got %q, want X", l.text)
	}
	if l := surface.labels["wp-0"]; l.opacity != 0 {
		t.Errorf("waypoint label must have faded out by the route end, opacity %f", l.opacity)
	}

	if got := len(surface.paths["leg-0"]); got != 10 {
		t.Errorf("completed leg 0 must be drawn in full, got %d points", got)
	}
	if pts := surface.paths["leg-1"]; len(pts) == 0 || pts[len(pts)-1] != route.End() {
		t.Errorf("current leg path must reach the traveler at the route end")
	}
	if style := surface.pathStyles["leg-1"]; !style.Dashed {
		t.Errorf("hiking leg must use the dashed style")
	}

	r.Render(PhaseEnd, 0.5)
	if surface.icon.visible {
		t.Errorf("end phase must hide the travel icon")
	}
	if m := surface.markers["end"]; m.opacity != 1 {
		t.Errorf("end marker must be fully revealed, got %f", m.opacity)
	}
	card := surface.overlays[OverlayEndCard]
	if card.Title != "Y" {
		t.Errorf("end card destination: got %q", card.Title)
	}
	if !strings.HasSuffix(card.Subtitle, " km on foot") {
		t.Fatalf("end card must report the hiking distance, got %q", card.Subtitle)
	}
	km, err := strconv.ParseFloat(strings.TrimSuffix(card.Subtitle, " km on foot"), 64)
	if err != nil {
		t.Fatalf("distance text %q: %v", card.Subtitle, err)
	}
	// Only leg B is hiking, a straight line of roughly 67 km.
	if km < 60 || km > 75 {
		t.Errorf("hiking distance %f km out of range", km)
	}
}

func TestPauseSignaledOncePerBoundary(t *testing.T) {
	r, _ := newTestRenderer(t, driveThenHike())

	count := 0
	for i := 0; i < 6; i++ {
		if sig := r.Render(PhaseRoute, 0.7); sig.ShouldPause {
			count++
		}
	}
	if count != 1 {
		t.Errorf("repeated renders inside one leg must pause once, got %d", count)
	}
}

func TestPauseCatchesUpOneBoundaryPerCall(t *testing.T) {
	route := &journey.Route{Legs: []journey.Leg{
		{Coordinates: line(10, 0, 0, 1, 1), Mode: journey.ModeDriving, PauseAfter: 1.5},
		{Coordinates: line(10, 1, 1, 2, 2), Mode: journey.ModeDriving, PauseAfter: 0.5},
		{Coordinates: line(10, 2, 2, 3, 3), Mode: journey.ModeDriving, PauseAfter: 2.0},
	}}
	r, _ := newTestRenderer(t, route)

	sig := r.Render(PhaseRoute, 0.95)
	if !sig.ShouldPause || sig.AfterLeg != 0 || sig.Duration != 1.5 {
		t.Fatalf("first call after a jump must report the earliest boundary: %+v", sig)
	}
	sig = r.Render(PhaseRoute, 0.95)
	if !sig.ShouldPause || sig.AfterLeg != 1 || sig.Duration != 0.5 {
		t.Fatalf("second call must report the next boundary: %+v", sig)
	}
	sig = r.Render(PhaseRoute, 0.95)
	if sig.ShouldPause {
		t.Fatalf("no boundary left to pause after, got %+v", sig)
	}
}

func TestIconSwapFadesBeforeBoundary(t *testing.T) {
	route := driveThenHike()
	r, surface := newTestRenderer(t, route)

	r.Render(PhaseRoute, 0.49)
	if surface.icon.kind != icon.KindCar {
		t.Fatalf("still on the driving leg, got icon %q", surface.icon.kind)
	}
	if op := surface.icon.opacity; op <= 0 || op >= 1 {
		t.Errorf("icon must be mid-fade in the final 5%% of the leg, opacity %f", op)
	}

	r.Render(PhaseRoute, 0.51)
	if surface.icon.kind != icon.KindBackpacker {
		t.Errorf("next leg must swap the icon kind, got %q", surface.icon.kind)
	}
	if surface.icon.opacity != 1 {
		t.Errorf("new icon must appear at full opacity, got %f", surface.icon.opacity)
	}
}

func TestIconNoneHidesSprite(t *testing.T) {
	route := driveThenHike()
	route.Legs[1].Icon = icon.KindNone
	r, surface := newTestRenderer(t, route)

	r.Render(PhaseRoute, 0.3)
	if !surface.icon.visible || surface.icon.kind != icon.KindCar {
		t.Fatalf("driving leg must show the car sprite")
	}

	r.Render(PhaseRoute, 0.6)
	if surface.icon.visible {
		t.Errorf("a leg with the icon set to %q must hide the sprite", icon.KindNone)
	}
}

func TestProjectionErrorSkipsFrameVisualsOnly(t *testing.T) {
	r, surface := newTestRenderer(t, driveThenHike())

	surface.projectErr = errors.New("tile layer not ready")
	r.Render(PhaseRoute, 0.3)
	if surface.iconSets != 0 {
		t.Fatalf("failed projection must skip the icon update")
	}
	if !r.State().CamSeeded || !r.State().FurniturePlaced {
		t.Fatalf("state must keep advancing through a dropped frame")
	}

	surface.projectErr = nil
	r.Render(PhaseRoute, 0.31)
	if surface.iconSets != 1 {
		t.Errorf("icon updates must resume on the next frame")
	}
}

func TestEndMarkerRevealsEarly(t *testing.T) {
	r, surface := newTestRenderer(t, driveThenHike())

	r.Render(PhaseRoute, 0.97)
	if m := surface.markers["end"]; m.opacity != 0 {
		t.Fatalf("end marker must stay hidden before the reveal point, got %f", m.opacity)
	}

	r.Render(PhaseRoute, 0.99)
	m := surface.markers["end"]
	if m.opacity <= 0 || m.opacity > 1 {
		t.Errorf("end marker must be fading in near completion, got %f", m.opacity)
	}
}

func TestRouteWithoutPanSeedsCameraInPlace(t *testing.T) {
	r, surface := newTestRenderer(t, driveThenHike())

	r.Render(PhaseRoute, 0.2)
	if !r.State().CamSeeded {
		t.Fatalf("route phase must lazily seed the camera")
	}
	if !surface.camSet {
		t.Fatalf("camera must be placed on the first route frame")
	}
	// Seeded at the traveler, so the very first frame cannot jump.
	leg0 := r.legs[0].Coordinates
	if math.Abs(surface.camAt.Lat-leg0[0].Lat) > 1 {
		t.Errorf("camera seeded far from the route: %+v", surface.camAt)
	}
}
