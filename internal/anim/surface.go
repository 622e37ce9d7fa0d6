package anim

import (
	"github.com/ivlev/route2video/internal/icon"
	"github.com/ivlev/route2video/internal/journey"
)

// PathStyle describes how a route polyline is stroked.
type PathStyle struct {
	Color  string // hex, #rrggbb
	Width  float64
	Dashed bool
}

// MarkerStyle describes a waypoint dot.
type MarkerStyle struct {
	Color  string
	Radius float64
}

// LabelStyle describes waypoint text.
type LabelStyle struct {
	Color string
	Size  float64
}

// OverlayKind selects which screen-space card an overlay call replaces.
type OverlayKind int

const (
	OverlayTitle OverlayKind = iota
	OverlayStamp
	OverlayEndCard
)

// Overlay is a screen-space card: the title/date card, the corner stamp, or
// the destination card. Opacity 0 clears it.
type Overlay struct {
	Kind     OverlayKind
	Title    string
	Subtitle string
	Opacity  float64
}

// Surface is the rendering sink the animation core draws into. All calls are
// idempotent "set visual state to X" instructions; removal is opacity zero.
// Project is the only query: it converts a geo-coordinate to screen pixels and
// is needed for icon placement and direction sampling. The animate flag on
// SetCamera is a hint for surfaces with native camera easing; raster surfaces
// ignore it.
type Surface interface {
	SetCamera(at journey.Coordinate, zoom float64, animate bool)
	SetPath(id string, pts []journey.Coordinate, style PathStyle)
	SetMarker(id string, at journey.Coordinate, style MarkerStyle, opacity float64)
	SetLabel(id string, at journey.Coordinate, text string, style LabelStyle, opacity float64)
	SetIcon(kind icon.Kind, at journey.Coordinate, p icon.Placement, opacity float64)
	HideIcon()
	SetOverlay(o Overlay)
	Project(c journey.Coordinate) (x, y float64, err error)
}

var (
	startMarkerStyle    = MarkerStyle{Color: "#2ecc71", Radius: 9}
	endMarkerStyle      = MarkerStyle{Color: "#e74c3c", Radius: 9}
	waypointMarkerStyle = MarkerStyle{Color: "#f39c12", Radius: 7}
	waypointLabelStyle  = LabelStyle{Color: "#1c2833", Size: 20}
)

// styleForMode picks the polyline style for a travel mode.
func styleForMode(m journey.Mode) PathStyle {
	switch m {
	case journey.ModeCycling:
		return PathStyle{Color: "#2e8b57", Width: 4}
	case journey.ModeWalking:
		return PathStyle{Color: "#e67e22", Width: 3.5, Dashed: true}
	case journey.ModeHiking:
		return PathStyle{Color: "#c0392b", Width: 3.5, Dashed: true}
	case journey.ModeFerry:
		return PathStyle{Color: "#2980b9", Width: 3, Dashed: true}
	default:
		return PathStyle{Color: "#d64541", Width: 4}
	}
}
