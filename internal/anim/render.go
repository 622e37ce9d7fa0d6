package anim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ivlev/route2video/internal/icon"
	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/track"
)

// SmoothingProfile tunes the camera's exponential lag. The driver supplies it
// so the same core serves real-time and frame-exact playback without
// branching on the mode.
type SmoothingProfile struct {
	Position   float64
	Zoom       float64
	NativeEase bool
}

// RealTimeSmoothing is tuned for perceived fluidity at display refresh rates.
var RealTimeSmoothing = SmoothingProfile{Position: 0.08, Zoom: 0.06, NativeEase: true}

// FrameExactSmoothing is tuned for fixed-step export frames.
var FrameExactSmoothing = SmoothingProfile{Position: 0.12, Zoom: 0.10, NativeEase: false}

// Config is the immutable per-run configuration.
type Config struct {
	ViewportW int
	ViewportH int
	MaxZoom   float64
	CloseZoom float64

	Title    string
	Date     string
	Stamp    string
	EndLabel string // defaults to the last leg's destination

	Smoothing       SmoothingProfile
	LookaheadPoints int
}

func (c Config) withDefaults() Config {
	if c.ViewportW == 0 {
		c.ViewportW = 1280
	}
	if c.ViewportH == 0 {
		c.ViewportH = 720
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = 17
	}
	if c.CloseZoom == 0 {
		c.CloseZoom = 13
	}
	if c.Smoothing == (SmoothingProfile{}) {
		c.Smoothing = FrameExactSmoothing
	}
	if c.LookaheadPoints == 0 {
		c.LookaheadPoints = 12
	}
	return c
}

// PauseSignal is the core's request to hold playback. The core only reports;
// the caller realizes the pause and must not advance progress for Duration
// before rendering again.
type PauseSignal struct {
	ShouldPause bool
	Duration    float64
	AfterLeg    int
}

const (
	titleFadeEdge      = 0.15
	iconSwapWindow     = 0.05
	labelFadeOutPoint  = 0.2
	labelFadeOutWidth  = 0.1
	endRevealProgress  = 0.98
	endCardFadeWindow  = 0.3
	endCardDetailPoint = 0.3
)

// Renderer is the animation core. It owns one run's State and draws each
// requested (phase, progress) moment onto the Surface. It performs no I/O and
// no timekeeping of its own.
type Renderer struct {
	cfg     Config
	route   *journey.Route
	legs    []journey.Leg
	surface Surface
	st      *State

	th             track.Thresholds
	zooms          []float64
	kfs            []track.Keyframe
	overviewCenter journey.Coordinate
	overviewZoom   float64

	log *slog.Logger
}

// NewRenderer validates the route and precomputes thresholds, zoom levels and
// keyframes for a run.
func NewRenderer(cfg Config, route *journey.Route, surface Surface) (*Renderer, error) {
	if err := route.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	th, err := track.NewThresholds(route.Legs)
	if err != nil {
		return nil, err
	}
	zooms := track.ZoomLevels(route.Legs, cfg.MaxZoom, cfg.CloseZoom, cfg.ViewportW, cfg.ViewportH)
	bounds := track.Bounds(route.Legs)

	return &Renderer{
		cfg:            cfg,
		route:          route,
		legs:           route.Legs,
		surface:        surface,
		st:             NewState(len(route.Legs)),
		th:             th,
		zooms:          zooms,
		kfs:            track.Keyframes(zooms, th),
		overviewCenter: track.Center(bounds),
		overviewZoom:   math.Min(track.FitZoom(bounds, cfg.ViewportW, cfg.ViewportH), cfg.MaxZoom),
		log:            slog.Default(),
	}, nil
}

// State exposes the run state for drivers and tests.
func (r *Renderer) State() *State { return r.st }

// OverviewZoom returns the whole-route framing zoom.
func (r *Renderer) OverviewZoom() float64 { return r.overviewZoom }

// Render draws the animation at the given phase and phase progress, advancing
// the run state. The returned signal asks the caller to hold playback; the
// frame itself is still fully drawn.
func (r *Renderer) Render(phase Phase, progress float64) PauseSignal {
	progress = clamp01(progress)
	switch phase {
	case PhaseTitle:
		r.renderTitle(progress)
	case PhasePan:
		r.renderPan(progress)
	case PhaseRoute:
		return r.renderRoute(progress)
	case PhaseEnd:
		r.renderEnd(progress)
	}
	return PauseSignal{}
}

func (r *Renderer) renderTitle(p float64) {
	if !r.st.TitleShown {
		r.st.TitleShown = true
		r.surface.SetCamera(r.overviewCenter, r.overviewZoom, false)
		if r.cfg.Stamp != "" && !r.st.StampShown {
			r.st.StampShown = true
			r.surface.SetOverlay(Overlay{Kind: OverlayStamp, Title: r.cfg.Stamp, Opacity: 1})
		}
	}
	r.surface.SetOverlay(Overlay{
		Kind:     OverlayTitle,
		Title:    r.cfg.Title,
		Subtitle: r.cfg.Date,
		Opacity:  fadeInOut(p, titleFadeEdge),
	})
}

func (r *Renderer) renderPan(p float64) {
	first := r.legs[0]
	start := first.Coordinates[0]

	if !r.st.StartPlaced {
		r.st.StartPlaced = true
		r.surface.SetMarker("start", start, startMarkerStyle, 1)
		if first.From != "" {
			r.surface.SetLabel("start", start, first.From, waypointLabelStyle, 1)
		}
		r.surface.SetOverlay(Overlay{Kind: OverlayTitle, Opacity: 0})
		// Seed the smoothed camera from the overview framing the title left
		// behind, so the pan starts from where the viewer already is.
		r.st.CamLat, r.st.CamLng, r.st.CamZoom = r.overviewCenter.Lat, r.overviewCenter.Lng, r.overviewZoom
		r.st.CamSeeded = true
	}

	// The pan target itself is eased, and the camera additionally lags
	// behind it, which reads as a trailing cinematic move rather than a
	// mechanical tween.
	eased := easeOutCubic(p)
	target := journey.Coordinate{
		Lat: lerp(r.overviewCenter.Lat, start.Lat, eased),
		Lng: lerp(r.overviewCenter.Lng, start.Lng, eased),
	}
	r.smoothCamera(target, lerp(r.overviewZoom, r.zooms[0], eased))
}

func (r *Renderer) renderRoute(p float64) PauseSignal {
	if !r.st.FurniturePlaced {
		r.st.FurniturePlaced = true
		r.placeRouteFurniture()
	}
	if !r.st.IconsVisible {
		r.st.IconsVisible = true
	}

	leg, local := track.SegmentInfo(p, r.th)

	// One boundary per call: a large progress jump reports the earliest
	// unvisited boundary now and the next ones on subsequent calls.
	var sig PauseSignal
	if leg > r.st.PausedAfterLeg+1 {
		boundary := r.st.PausedAfterLeg + 1
		r.st.PausedAfterLeg = boundary
		sig = PauseSignal{
			ShouldPause: true,
			Duration:    r.legs[boundary].PauseAfter,
			AfterLeg:    boundary,
		}
	}

	r.updateWaypointLabels(p)

	cur := r.legs[leg]
	kind := r.iconKind(leg)
	iconOpacity := 1.0
	if leg+1 < len(r.legs) && r.iconKind(leg+1) != kind && local > 1-iconSwapWindow {
		// Hide the icon over the final stretch of the leg so the kind swap
		// never pops.
		iconOpacity = (1 - local) / iconSwapWindow
	}

	targetZoom := track.InterpolatedZoom(p, r.kfs)
	traveler := track.Interpolate(cur.Coordinates, local)
	look := track.Lookahead(cur.Coordinates, local, r.cfg.LookaheadPoints)

	if !r.st.CamSeeded {
		r.st.CamLat, r.st.CamLng, r.st.CamZoom = traveler.Lat, traveler.Lng, targetZoom
		r.st.CamSeeded = true
	}

	// More lookahead when zoomed out, none when close in, so the camera
	// anticipates turns exactly when they are visible.
	blend := r.lookaheadBlend()
	camTarget := journey.Coordinate{
		Lat: lerp(traveler.Lat, look.Lat, blend),
		Lng: lerp(traveler.Lng, look.Lng, blend),
	}
	r.smoothCamera(camTarget, targetZoom)

	r.redrawPath(leg, local, traveler)

	if kind != icon.KindNone {
		r.placeIcon(kind, traveler, look, iconOpacity)
	} else {
		r.surface.HideIcon()
	}

	if p >= endRevealProgress {
		r.revealEnd((p - endRevealProgress) / (1 - endRevealProgress))
	}

	return sig
}

func (r *Renderer) renderEnd(p float64) {
	r.surface.HideIcon()
	r.revealEnd(1)

	fade := clamp01(p / endCardFadeWindow)
	subtitle := ""
	if fade > endCardDetailPoint {
		if km := track.ModeDistance(r.legs, journey.ModeHiking) / 1000; km > 0 {
			subtitle = fmt.Sprintf("%.1f km on foot", km)
		}
	}
	r.surface.SetOverlay(Overlay{
		Kind:     OverlayEndCard,
		Title:    r.endLabel(),
		Subtitle: subtitle,
		Opacity:  fade,
	})
}

func (r *Renderer) placeRouteFurniture() {
	for i := 0; i < len(r.legs)-1; i++ {
		if r.legs[i].To == "" {
			continue
		}
		at := r.waypointCoord(i)
		r.surface.SetMarker(waypointID(i), at, waypointMarkerStyle, 0)
		r.surface.SetLabel(waypointID(i), at, r.legs[i].To, waypointLabelStyle, 0)
	}
	r.revealEnd(0)
}

func (r *Renderer) revealEnd(opacity float64) {
	opacity = clamp01(opacity)
	end := r.route.End()
	r.surface.SetMarker("end", end, endMarkerStyle, opacity)
	if label := r.endLabel(); label != "" {
		r.surface.SetLabel("end", end, label, waypointLabelStyle, opacity)
	}
}

// updateWaypointLabels drives the fade choreography for intermediate
// waypoints. A label fades in across the last third of the gap before its
// waypoint and fades out once the traveler is more than 20% into the next
// leg. Both transitions are one-shot per waypoint.
func (r *Renderer) updateWaypointLabels(p float64) {
	for i := 0; i < len(r.legs)-1; i++ {
		if r.legs[i].To == "" {
			continue
		}

		fadeIn := r.fadeInThreshold(i)
		gap := r.th[i+1] - r.th[i]
		fadeOutStart := r.th[i] + labelFadeOutPoint*gap
		fadeOutEnd := fadeOutStart + labelFadeOutWidth*gap

		var op float64
		switch {
		case p < fadeIn:
			op = 0
		case p < r.th[i]:
			op = (p - fadeIn) / (r.th[i] - fadeIn)
		case p <= fadeOutStart:
			op = 1
		default:
			op = 1 - clamp01((p-fadeOutStart)/(fadeOutEnd-fadeOutStart))
		}

		if op > 0 && !r.st.WaypointShown[i] {
			r.st.WaypointShown[i] = true
		}
		if p > fadeOutStart && r.st.WaypointShown[i] && !r.st.WaypointFaded[i] {
			r.st.WaypointFaded[i] = true
		}

		at := r.waypointCoord(i)
		r.surface.SetMarker(waypointID(i), at, waypointMarkerStyle, op)
		r.surface.SetLabel(waypointID(i), at, r.legs[i].To, waypointLabelStyle, op)
	}
}

// fadeInThreshold places a label's fade-in 2/3 of the way through the gap
// before its waypoint; for the first waypoint that is 2/3 of its own share.
func (r *Renderer) fadeInThreshold(i int) float64 {
	if i == 0 {
		return r.th[0] * 2 / 3
	}
	return r.th[i-1] + (r.th[i]-r.th[i-1])*2/3
}

func (r *Renderer) redrawPath(leg int, local float64, traveler journey.Coordinate) {
	for i := 0; i < leg; i++ {
		r.surface.SetPath(pathID(i), r.legs[i].Coordinates, styleForMode(r.legs[i].Mode))
	}

	pts := r.legs[leg].Coordinates
	idx := int(local * float64(len(pts)-1))
	if idx > len(pts)-1 {
		idx = len(pts) - 1
	}
	partial := make([]journey.Coordinate, 0, idx+2)
	partial = append(partial, pts[:idx+1]...)
	partial = append(partial, traveler)
	r.surface.SetPath(pathID(leg), partial, styleForMode(r.legs[leg].Mode))
}

// placeIcon projects the traveler and its lookahead to screen space, derives
// the travel direction from the two, and places the icon. A failed projection
// skips only this frame's icon update; run state is untouched and the next
// frame recovers.
func (r *Renderer) placeIcon(kind icon.Kind, traveler, look journey.Coordinate, opacity float64) {
	x0, y0, err := r.surface.Project(traveler)
	if err != nil {
		r.log.Warn("projection failed, skipping icon update", "err", err)
		return
	}
	x1, y1, err := r.surface.Project(look)
	if err != nil {
		r.log.Warn("projection failed, skipping icon update", "err", err)
		return
	}

	placement := icon.Orient(kind, x1-x0, y1-y0, r.st.LastPlacements)
	r.surface.SetIcon(kind, traveler, placement, opacity)
}

func (r *Renderer) smoothCamera(target journey.Coordinate, zoom float64) {
	if !r.st.CamSeeded {
		r.st.CamLat, r.st.CamLng, r.st.CamZoom = target.Lat, target.Lng, zoom
		r.st.CamSeeded = true
	} else {
		r.st.CamLat += (target.Lat - r.st.CamLat) * r.cfg.Smoothing.Position
		r.st.CamLng += (target.Lng - r.st.CamLng) * r.cfg.Smoothing.Position
		r.st.CamZoom += (zoom - r.st.CamZoom) * r.cfg.Smoothing.Zoom
	}
	r.surface.SetCamera(journey.Coordinate{Lat: r.st.CamLat, Lng: r.st.CamLng}, r.st.CamZoom, r.cfg.Smoothing.NativeEase)
}

func (r *Renderer) lookaheadBlend() float64 {
	span := r.cfg.CloseZoom - r.overviewZoom
	if span <= 0 {
		return 0
	}
	return clamp01((r.cfg.CloseZoom - r.st.CamZoom) / span)
}

func (r *Renderer) iconKind(leg int) icon.Kind {
	if r.legs[leg].Icon != "" {
		return r.legs[leg].Icon
	}
	return r.legs[leg].Mode.DefaultIcon()
}

func (r *Renderer) endLabel() string {
	if r.cfg.EndLabel != "" {
		return r.cfg.EndLabel
	}
	last := r.legs[len(r.legs)-1]
	if last.To != "" {
		return last.To
	}
	return last.From
}

func (r *Renderer) waypointCoord(i int) journey.Coordinate {
	pts := r.legs[i].Coordinates
	return pts[len(pts)-1]
}

func waypointID(i int) string { return fmt.Sprintf("wp-%d", i) }
func pathID(i int) string     { return fmt.Sprintf("leg-%d", i) }

// fadeInOut ramps 0→1 over the leading edge, holds, and ramps back down over
// the trailing edge.
func fadeInOut(p, edge float64) float64 {
	switch {
	case p < edge:
		return p / edge
	case p > 1-edge:
		return (1 - p) / edge
	default:
		return 1
	}
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
