package route

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ivlev/route2video/internal/journey"
)

// Resolver turns an authored journey into a fully resolved route. Every leg
// gets its polyline from the first available source: inline points, a GPX
// file, the routing service, then a great-circle line.
type Resolver struct {
	Router   Router   // road geometry, nil disables
	Fallback Router   // straight-line geometry when routing is unavailable
	Geocoder Geocoder // place-name lookups, nil disables
	GPXDir   string   // base directory for relative gpx paths
	Log      *slog.Logger

	geoCache map[string]journey.Coordinate
}

func NewResolver(router Router, geocoder Geocoder) *Resolver {
	return &Resolver{
		Router:   router,
		Fallback: &FallbackRouter{},
		Geocoder: geocoder,
		Log:      slog.Default(),
		geoCache: make(map[string]journey.Coordinate),
	}
}

// Resolve validates the journey, resolves every leg and returns a route ready
// for animation.
func (r *Resolver) Resolve(ctx context.Context, j *journey.Journey) (*journey.Route, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	legs := make([]journey.Leg, 0, len(j.Legs))
	for i, spec := range j.Legs {
		pts, err := r.resolveLeg(ctx, i, spec)
		if err != nil {
			return nil, fmt.Errorf("route: leg %d (%s - %s): %w", i, spec.From, spec.To, err)
		}
		legs = append(legs, journey.Leg{
			Coordinates: pts,
			Icon:        spec.Icon,
			From:        spec.From,
			To:          spec.To,
			Mode:        spec.Mode,
			Zoom:        spec.Zoom,
			PauseAfter:  spec.Pause(),
		})
	}

	route := &journey.Route{Legs: legs}
	if err := route.Validate(); err != nil {
		return nil, err
	}
	return route, nil
}

func (r *Resolver) resolveLeg(ctx context.Context, i int, spec journey.LegSpec) ([]journey.Coordinate, error) {
	if len(spec.Points) > 0 {
		return spec.Points, nil
	}
	if spec.GPX != "" {
		path := spec.GPX
		if !filepath.IsAbs(path) && r.GPXDir != "" {
			path = filepath.Join(r.GPXDir, path)
		}
		return LoadGPX(path)
	}

	from, to, err := r.endpoints(ctx, spec)
	if err != nil {
		return nil, err
	}
	waypoints := make([]journey.Coordinate, 0, len(spec.Via)+2)
	waypoints = append(waypoints, from)
	waypoints = append(waypoints, spec.Via...)
	waypoints = append(waypoints, to)

	// Ferry legs never touch the road router.
	if r.Router != nil && spec.Mode != journey.ModeFerry {
		pts, err := r.Router.Route(ctx, spec.Mode, waypoints)
		if err == nil {
			return pts, nil
		}
		r.Log.Warn("routing failed, drawing a direct line", "leg", i, "from", spec.From, "to", spec.To, "err", err)
	}
	return r.Fallback.Route(ctx, spec.Mode, waypoints)
}

func (r *Resolver) endpoints(ctx context.Context, spec journey.LegSpec) (from, to journey.Coordinate, err error) {
	switch {
	case spec.FromCoord != nil:
		from = *spec.FromCoord
	case spec.From != "":
		from, err = r.geocode(ctx, spec.From)
		if err != nil {
			return
		}
	default:
		err = journey.ErrNoGeometry
		return
	}

	switch {
	case spec.ToCoord != nil:
		to = *spec.ToCoord
	case spec.To != "":
		to, err = r.geocode(ctx, spec.To)
	default:
		err = fmt.Errorf("%w: no destination", journey.ErrNoGeometry)
	}
	return
}

func (r *Resolver) geocode(ctx context.Context, place string) (journey.Coordinate, error) {
	if c, ok := r.geoCache[place]; ok {
		return c, nil
	}
	if r.Geocoder == nil {
		return journey.Coordinate{}, fmt.Errorf("route: no geocoder to resolve %q", place)
	}
	c, err := r.Geocoder.Geocode(ctx, place)
	if err != nil {
		return journey.Coordinate{}, err
	}
	r.geoCache[place] = c
	return c, nil
}
