package icon

import "math"

// Facing is the horizontal direction an icon's artwork points at zero rotation.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

// Kind identifies a travel icon.
type Kind string

const (
	KindNone       Kind = "none"
	KindCar        Kind = "car"
	KindBus        Kind = "bus"
	KindCyclist    Kind = "cyclist"
	KindBoat       Kind = "boat"
	KindWalker     Kind = "walker"
	KindBackpacker Kind = "backpacker"
)

// Config describes how an icon kind behaves on screen.
type Config struct {
	Facing  Facing
	Rotates bool // tilts to follow the path; walkers only mirror
	Size    int  // on-screen size in pixels
}

var configs = map[Kind]Config{
	KindCar:        {Facing: FacingRight, Rotates: true, Size: 42},
	KindBus:        {Facing: FacingRight, Rotates: true, Size: 48},
	KindCyclist:    {Facing: FacingRight, Rotates: true, Size: 38},
	KindBoat:       {Facing: FacingRight, Rotates: true, Size: 44},
	KindWalker:     {Facing: FacingRight, Rotates: false, Size: 32},
	KindBackpacker: {Facing: FacingRight, Rotates: false, Size: 34},
}

// Lookup returns the configuration for a kind.
func Lookup(kind Kind) (Config, bool) {
	cfg, ok := configs[kind]
	return cfg, ok
}

// Placement is a computed on-screen orientation. Mirror is applied before
// rotation when composing the transform.
type Placement struct {
	AngleDeg float64
	Mirror   bool
}

const (
	// Fraction of the remaining angle delta applied per call.
	smoothingFactor = 0.25
	// Deltas below this are ignored so the icon settles instead of oscillating.
	angleThresholdDeg = 1.5
	minVectorLen      = 1e-6
)

// Orient maps a screen-space travel direction (dx, dy) to a placement for the
// given kind. Screen coordinates have y pointing down, so positive angles are
// clockwise. prev holds the previously rendered placement per kind and is
// updated in place; keeping one slot per kind means switching icons mid-route
// never inherits a stale angle.
func Orient(kind Kind, dx, dy float64, prev map[Kind]Placement) Placement {
	cfg, ok := configs[kind]
	if !ok {
		return Placement{}
	}

	if math.Hypot(dx, dy) < minVectorLen {
		// Direction is undefined, hold whatever was rendered last.
		return prev[kind]
	}

	if !cfg.Rotates {
		p := Placement{Mirror: movingAgainstFacing(dx, cfg.Facing)}
		prev[kind] = p
		return p
	}

	theta := math.Atan2(dy, dx) * 180 / math.Pi

	var target Placement
	if dx >= 0 {
		target = Placement{AngleDeg: theta, Mirror: cfg.Facing == FacingLeft}
	} else {
		// Mirrored sprite: tilt is measured against the leftward axis so the
		// angle stays continuous as the heading crosses ±180°.
		target = Placement{AngleDeg: normalizeAngle(theta - 180), Mirror: cfg.Facing == FacingRight}
	}

	last, seen := prev[kind]
	if !seen {
		prev[kind] = target
		return target
	}

	delta := normalizeAngle(target.AngleDeg - last.AngleDeg)
	if math.Abs(delta) > angleThresholdDeg {
		target.AngleDeg = normalizeAngle(last.AngleDeg + delta*smoothingFactor)
	} else {
		target.AngleDeg = last.AngleDeg
	}
	prev[kind] = target
	return target
}

func movingAgainstFacing(dx float64, f Facing) bool {
	if dx >= 0 {
		return f == FacingLeft
	}
	return f == FacingRight
}

// normalizeAngle wraps an angle into [-180, 180].
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}
