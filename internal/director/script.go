package director

import "github.com/ivlev/route2video/internal/anim"

// Default phase lengths in seconds. The route phase has no default because
// its length is the journey's main dial and always comes from configuration.
const (
	DefaultTitleSeconds = 3.0
	DefaultPanSeconds   = 2.5
	DefaultEndSeconds   = 3.5
)

// PhaseSpec is one scheduled phase of the show.
type PhaseSpec struct {
	Phase    anim.Phase
	Duration float64 // seconds, excluding waypoint pauses
}

// Script is the ordered phase schedule of one animation run. Waypoint pauses
// are not part of the script; the core reports them and the driver stretches
// playback around them.
type Script []PhaseSpec

// NewScript builds the standard four-phase schedule. Phases with a
// non-positive duration are skipped during playback.
func NewScript(title, pan, route, end float64) Script {
	return Script{
		{Phase: anim.PhaseTitle, Duration: title},
		{Phase: anim.PhasePan, Duration: pan},
		{Phase: anim.PhaseRoute, Duration: route},
		{Phase: anim.PhaseEnd, Duration: end},
	}
}

// DefaultScript schedules the standard show around a route of the given
// length in seconds.
func DefaultScript(routeSeconds float64) Script {
	return NewScript(DefaultTitleSeconds, DefaultPanSeconds, routeSeconds, DefaultEndSeconds)
}

// Total returns the script length in seconds, excluding waypoint pauses.
func (s Script) Total() float64 {
	var total float64
	for _, ps := range s {
		if ps.Duration > 0 {
			total += ps.Duration
		}
	}
	return total
}

// At maps an effective timeline position (seconds of actual playback, pause
// time already removed) to the phase playing at that moment and the progress
// within it. done reports that t has run past the end of the script.
func (s Script) At(t float64) (anim.Phase, float64, bool) {
	if t < 0 {
		t = 0
	}
	for _, ps := range s {
		if ps.Duration <= 0 {
			continue
		}
		if t < ps.Duration {
			return ps.Phase, t / ps.Duration, false
		}
		t -= ps.Duration
	}
	last := anim.PhaseEnd
	if len(s) > 0 {
		last = s[len(s)-1].Phase
	}
	return last, 1, true
}
