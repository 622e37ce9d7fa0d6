package anim

import "github.com/ivlev/route2video/internal/icon"

// State is the mutable per-run animation state. One instance belongs to
// exactly one run, is created fresh at its start and discarded at its end,
// and must never be shared between concurrent runs. Every one-shot event is
// an explicit field so a run is fully inspectable and replayable.
type State struct {
	// Smoothed camera, lazily seeded on first use so playback never opens
	// with a visible jump.
	CamLat    float64
	CamLng    float64
	CamZoom   float64
	CamSeeded bool

	// Last rendered placement per icon kind. Kept per kind so switching
	// icons mid-route never inherits a stale angle.
	LastPlacements map[icon.Kind]icon.Placement

	TitleShown      bool
	StampShown      bool
	StartPlaced     bool
	FurniturePlaced bool
	IconsVisible    bool

	// One-shot transitions per intermediate waypoint.
	WaypointShown []bool
	WaypointFaded []bool

	// PausedAfterLeg is the index of the last leg boundary already paused
	// after, -1 before the first. The core performs no timekeeping: active
	// pause durations are counted down by the driver that received the
	// signal.
	PausedAfterLeg int
}

// NewState creates the state for a run over the given number of legs.
func NewState(legCount int) *State {
	return &State{
		LastPlacements: make(map[icon.Kind]icon.Placement),
		WaypointShown:  make([]bool, legCount),
		WaypointFaded:  make([]bool, legCount),
		PausedAfterLeg: -1,
	}
}
