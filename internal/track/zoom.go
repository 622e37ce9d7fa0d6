package track

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/ivlev/route2video/internal/journey"
)

// Keyframe anchors a target zoom at a progress threshold.
type Keyframe struct {
	Threshold float64
	Zoom      float64
}

const (
	// Share of the viewport a fitted bounding box may occupy.
	fitPadding = 0.9
	// Ceiling for degenerate bounding boxes (single points).
	maxFitZoom = 21.0
)

// GlobalPixel projects a coordinate to Web Mercator world-pixel space at the
// given (possibly fractional) zoom, where the world spans 256·2^zoom pixels.
func GlobalPixel(c journey.Coordinate, zoom float64) (x, y float64) {
	scale := 256 * math.Exp2(zoom)
	siny := math.Sin(c.Lat * math.Pi / 180)
	// Clamp so poles never produce infinities.
	siny = math.Min(math.Max(siny, -0.9999), 0.9999)
	x = scale * (0.5 + c.Lng/360)
	y = scale * (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi))
	return x, y
}

// FitZoom computes the fractional zoom at which the bound, padded, just fits
// a viewport of the given pixel size.
func FitZoom(b orb.Bound, viewportW, viewportH int) float64 {
	x0, y0 := GlobalPixel(journey.Coordinate{Lat: b.Max.Lat(), Lng: b.Min.Lon()}, 0)
	x1, y1 := GlobalPixel(journey.Coordinate{Lat: b.Min.Lat(), Lng: b.Max.Lon()}, 0)

	zx, zy := maxFitZoom, maxFitZoom
	if dx := x1 - x0; dx > 0 {
		zx = math.Log2(float64(viewportW) * fitPadding / dx)
	}
	if dy := y1 - y0; dy > 0 {
		zy = math.Log2(float64(viewportH) * fitPadding / dy)
	}
	return math.Min(math.Min(zx, zy), maxFitZoom)
}

// ZoomLevels picks the camera zoom for every leg. An explicit per-leg zoom is
// used untouched. Otherwise the leg's bounding box is fitted to the viewport,
// then floored by the whole-route overview zoom and the close-follow zoom so a
// leg never zooms out past the overview, and capped at maxZoom so the map
// imagery can always serve it.
func ZoomLevels(legs []journey.Leg, maxZoom, closeZoom float64, viewportW, viewportH int) []float64 {
	overview := FitZoom(Bounds(legs), viewportW, viewportH)

	zooms := make([]float64, len(legs))
	for i, leg := range legs {
		if leg.Zoom > 0 {
			zooms[i] = leg.Zoom
			continue
		}
		fit := FitZoom(BoundsOf(leg.Coordinates), viewportW, viewportH)
		z := math.Max(fit, math.Max(overview, closeZoom))
		zooms[i] = math.Min(z, maxZoom)
	}
	return zooms
}

// Keyframes prepends a keyframe at progress 0 with the first leg's zoom, then
// adds one keyframe per leg boundary at its threshold with that leg's zoom.
func Keyframes(zooms []float64, th Thresholds) []Keyframe {
	kfs := make([]Keyframe, 0, len(zooms)+1)
	kfs = append(kfs, Keyframe{Threshold: 0, Zoom: zooms[0]})
	for i, z := range zooms {
		kfs = append(kfs, Keyframe{Threshold: th[i], Zoom: z})
	}
	return kfs
}

// InterpolatedZoom evaluates the zoom at a progress value by locating the
// bracketing keyframe pair and blending with a smoothstep curve, so zoom
// changes start and finish gently instead of snapping linearly.
func InterpolatedZoom(progress float64, kfs []Keyframe) float64 {
	if len(kfs) == 0 {
		return 0
	}

	if progress <= kfs[0].Threshold {
		return kfs[0].Zoom
	}
	last := kfs[len(kfs)-1]
	if progress >= last.Threshold {
		return last.Zoom
	}

	for i := 0; i < len(kfs)-1; i++ {
		a, b := kfs[i], kfs[i+1]
		if progress >= a.Threshold && progress < b.Threshold {
			span := b.Threshold - a.Threshold
			if span <= 0 {
				return b.Zoom
			}
			t := (progress - a.Threshold) / span
			return lerp(a.Zoom, b.Zoom, smoothstep(t))
		}
	}
	return last.Zoom
}

// smoothstep is 3t²−2t³: zero first derivative at both ends.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
