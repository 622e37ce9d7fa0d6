package journey

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/route2video/internal/icon"
)

var (
	ErrEmptyRoute    = errors.New("journey: route has no legs")
	ErrEmptyLeg      = errors.New("journey: leg has no coordinates")
	ErrBadCoordinate = errors.New("journey: coordinate out of range")
	ErrNoGeometry    = errors.New("journey: leg has no geometry source")
)

// DefaultPause is the hold after finishing a leg when none is configured.
const DefaultPause = 1.0

// Coordinate is a (latitude, longitude) pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinate is finite and inside WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// UnmarshalYAML accepts either the compact [lat, lng] form or a
// {lat: .., lng: ..} mapping.
func (c *Coordinate) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair [2]float64
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("journey: bad coordinate pair: %w", err)
		}
		c.Lat, c.Lng = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		var aux struct {
			Lat float64 `yaml:"lat"`
			Lng float64 `yaml:"lng"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("journey: bad coordinate mapping: %w", err)
		}
		c.Lat, c.Lng = aux.Lat, aux.Lng
		return nil
	default:
		return fmt.Errorf("journey: coordinate must be [lat, lng] or {lat, lng}, got %s", value.Tag)
	}
}

// MarshalYAML emits the compact flow form [lat, lng].
func (c Coordinate) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	node.Content = []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(c.Lat, 'f', -1, 64)},
		{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(c.Lng, 'f', -1, 64)},
	}
	return node, nil
}

// Mode tags a leg's means of travel. It selects the line style and which legs
// count toward the end-card distance.
type Mode string

const (
	ModeDriving Mode = "driving"
	ModeCycling Mode = "cycling"
	ModeWalking Mode = "walking"
	ModeHiking  Mode = "hiking"
	ModeFerry   Mode = "ferry"
)

// DefaultIcon returns the travel icon conventionally used for a mode.
func (m Mode) DefaultIcon() icon.Kind {
	switch m {
	case ModeDriving:
		return icon.KindCar
	case ModeCycling:
		return icon.KindCyclist
	case ModeWalking:
		return icon.KindWalker
	case ModeHiking:
		return icon.KindBackpacker
	case ModeFerry:
		return icon.KindBoat
	default:
		return icon.KindCar
	}
}

// LegSpec is one leg as authored in a journey file, before its geometry has
// been resolved. Exactly one geometry source is used, in order of precedence:
// inline points, a GPX file, the routing service, straight-line fallback.
type LegSpec struct {
	From       string       `yaml:"from"`
	To         string       `yaml:"to,omitempty"`
	Mode       Mode         `yaml:"mode"`
	Icon       icon.Kind    `yaml:"icon,omitempty"`
	Zoom       float64      `yaml:"zoom,omitempty"`
	PauseAfter *float64     `yaml:"pause_after,omitempty"`
	Points     []Coordinate `yaml:"points,omitempty"`
	GPX        string       `yaml:"gpx,omitempty"`
	Via        []Coordinate `yaml:"via,omitempty"`
	FromCoord  *Coordinate  `yaml:"from_coord,omitempty"`
	ToCoord    *Coordinate  `yaml:"to_coord,omitempty"`
}

// Pause returns the configured hold after this leg, or the default.
func (l LegSpec) Pause() float64 {
	if l.PauseAfter != nil {
		return *l.PauseAfter
	}
	return DefaultPause
}

// Journey is a complete journey definition file.
type Journey struct {
	Title    string    `yaml:"title"`
	Date     string    `yaml:"date,omitempty"`
	Stamp    string    `yaml:"stamp,omitempty"`
	Style    string    `yaml:"style,omitempty"`
	ShareURL string    `yaml:"share_url,omitempty"`
	Legs     []LegSpec `yaml:"legs"`
}

// Validate checks the authored journey before resolution.
func (j *Journey) Validate() error {
	if len(j.Legs) == 0 {
		return ErrEmptyRoute
	}
	for i, leg := range j.Legs {
		if leg.Mode == "" {
			return fmt.Errorf("journey: leg %d has no mode", i)
		}
		if leg.Icon != "" && leg.Icon != icon.KindNone {
			if _, ok := icon.Lookup(leg.Icon); !ok {
				return fmt.Errorf("journey: leg %d has unknown icon %q", i, leg.Icon)
			}
		}
		if len(leg.Points) == 0 && leg.GPX == "" && leg.From == "" && leg.FromCoord == nil {
			return fmt.Errorf("journey: leg %d: %w", i, ErrNoGeometry)
		}
		for _, p := range leg.Points {
			if !p.Valid() {
				return fmt.Errorf("journey: leg %d: %w: %v", i, ErrBadCoordinate, p)
			}
		}
	}
	return nil
}

// Template is a commented starter journey written by `route2video init`.
const Template = `# route2video journey definition
title: "My Journey"
date: "2026-08-21"
style: "osm"           # osm | opentopomap | carto-light | carto-dark
# share_url: "https://example.com/trip"

legs:
  - from: "Geneva"
    to: "Chamonix"
    mode: driving       # driving | cycling | walking | hiking | ferry
    pause_after: 1.5    # seconds to hold at the waypoint
    # zoom: 11          # fix the zoom for this leg instead of auto-fit
    # points: [[46.2044, 6.1432], [46.1, 6.5]]
    # gpx: "leg1.gpx"
  - from: "Chamonix"
    to: "Lac Blanc"
    mode: hiking
`
