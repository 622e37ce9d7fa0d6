package track

import (
	"github.com/ivlev/route2video/internal/journey"
)

// Thresholds are cumulative waypoint-count shares, one per leg, strictly
// increasing with the last entry exactly 1. Weighting by waypoint count rather
// than distance means densely sampled legs (curvy trails) occupy
// proportionally more of the animation.
type Thresholds []float64

// NewThresholds derives the progress thresholds for a route's legs.
func NewThresholds(legs []journey.Leg) (Thresholds, error) {
	if len(legs) == 0 {
		return nil, journey.ErrEmptyRoute
	}

	total := 0
	for _, leg := range legs {
		if len(leg.Coordinates) == 0 {
			return nil, journey.ErrEmptyLeg
		}
		total += len(leg.Coordinates)
	}

	th := make(Thresholds, len(legs))
	cum := 0
	for i, leg := range legs {
		cum += len(leg.Coordinates)
		th[i] = float64(cum) / float64(total)
	}
	// Pin the final threshold so float accumulation never leaves it short of 1.
	th[len(th)-1] = 1
	return th, nil
}

// SegmentInfo maps a global progress value to the current leg index and the
// progress within that leg. The current leg is the first whose threshold is
// strictly greater than progress; progress at or beyond 1 clamps to the final
// leg. A zero-width leg share yields local progress 1.
func SegmentInfo(progress float64, th Thresholds) (leg int, local float64) {
	leg = len(th) - 1
	for i, t := range th {
		if t > progress {
			leg = i
			break
		}
	}

	start := 0.0
	if leg > 0 {
		start = th[leg-1]
	}
	span := th[leg] - start
	if span <= 0 {
		return leg, 1
	}

	local = (progress - start) / span
	if local < 0 {
		local = 0
	} else if local > 1 {
		local = 1
	}
	return leg, local
}

// Interpolate returns the position at fraction t of a polyline, blending
// linearly between the two bracketing coordinates.
func Interpolate(pts []journey.Coordinate, t float64) journey.Coordinate {
	n := len(pts)
	if n == 1 {
		return pts[0]
	}

	f := clamp01(t) * float64(n-1)
	i := int(f)
	if i >= n-1 {
		return pts[n-1]
	}
	frac := f - float64(i)
	return journey.Coordinate{
		Lat: lerp(pts[i].Lat, pts[i+1].Lat, frac),
		Lng: lerp(pts[i].Lng, pts[i+1].Lng, frac),
	}
}

// Lookahead returns a point `ahead` waypoints past the position at fraction t
// of the polyline, clamped to its end. A long lookahead keeps heading and
// camera targets stable across ordinary path wiggle.
func Lookahead(pts []journey.Coordinate, t float64, ahead int) journey.Coordinate {
	n := len(pts)
	idx := int(clamp01(t)*float64(n-1)) + ahead
	if idx > n-1 {
		idx = n - 1
	}
	return pts[idx]
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
