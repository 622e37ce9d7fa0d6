package journey

import (
	"fmt"

	"github.com/ivlev/route2video/internal/icon"
)

// Leg is one resolved travel segment: a polyline plus its display attributes.
// Legs are immutable for the lifetime of an animation run.
type Leg struct {
	Coordinates []Coordinate `yaml:"coordinates"`
	Icon        icon.Kind    `yaml:"icon"`
	From        string       `yaml:"from"`
	To          string       `yaml:"to,omitempty"`
	Mode        Mode         `yaml:"mode"`
	Zoom        float64      `yaml:"zoom,omitempty"`
	PauseAfter  float64      `yaml:"pause_after"`
}

// Route is the ordered list of all resolved legs of a journey.
type Route struct {
	Legs []Leg `yaml:"legs"`
}

// Validate rejects routes the animation core cannot consume.
func (r *Route) Validate() error {
	if len(r.Legs) == 0 {
		return ErrEmptyRoute
	}
	for i, leg := range r.Legs {
		if len(leg.Coordinates) == 0 {
			return fmt.Errorf("route: leg %d: %w", i, ErrEmptyLeg)
		}
		for _, c := range leg.Coordinates {
			if !c.Valid() {
				return fmt.Errorf("route: leg %d: %w: %v", i, ErrBadCoordinate, c)
			}
		}
		if leg.PauseAfter < 0 {
			return fmt.Errorf("route: leg %d has negative pause", i)
		}
	}
	return nil
}

// FullPath concatenates every leg's coordinates into the complete journey path.
func (r *Route) FullPath() []Coordinate {
	var n int
	for _, leg := range r.Legs {
		n += len(leg.Coordinates)
	}
	path := make([]Coordinate, 0, n)
	for _, leg := range r.Legs {
		path = append(path, leg.Coordinates...)
	}
	return path
}

// Start returns the first coordinate of the route.
func (r *Route) Start() Coordinate {
	return r.Legs[0].Coordinates[0]
}

// End returns the last coordinate of the route.
func (r *Route) End() Coordinate {
	last := r.Legs[len(r.Legs)-1]
	return last.Coordinates[len(last.Coordinates)-1]
}
