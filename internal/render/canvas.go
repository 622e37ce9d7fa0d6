package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/fogleman/gg"

	"github.com/ivlev/route2video/internal/anim"
	"github.com/ivlev/route2video/internal/icon"
	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/system"
	"github.com/ivlev/route2video/internal/tiles"
	"github.com/ivlev/route2video/internal/track"
)

// ErrNoCamera is returned by Project before the first SetCamera call.
var ErrNoCamera = errors.New("render: camera not set")

type pathState struct {
	pts   []journey.Coordinate
	style anim.PathStyle
}

type markerState struct {
	at      journey.Coordinate
	style   anim.MarkerStyle
	opacity float64
}

type labelState struct {
	at      journey.Coordinate
	text    string
	style   anim.LabelStyle
	opacity float64
}

type iconState struct {
	kind    icon.Kind
	at      journey.Coordinate
	place   icon.Placement
	opacity float64
	visible bool
}

// Canvas is a raster Surface. Set calls mutate retained state; Snapshot
// composites the current state over map tiles into a frame image. Drive it
// from a single goroutine.
type Canvas struct {
	w, h    int
	fetcher *tiles.Fetcher
	faces   *faceCache
	log     *slog.Logger

	// ShareURL, when set, puts a QR code on the destination card.
	ShareURL string
	qr       image.Image

	camAt   journey.Coordinate
	camZoom float64
	camSet  bool

	paths       map[string]pathState
	pathOrder   []string
	markers     map[string]markerState
	markerOrder []string
	labels      map[string]labelState
	labelOrder  []string
	icon        iconState
	overlays    map[anim.OverlayKind]anim.Overlay
}

func NewCanvas(w, h int, fetcher *tiles.Fetcher) *Canvas {
	return &Canvas{
		w:        w,
		h:        h,
		fetcher:  fetcher,
		faces:    newFaceCache(),
		log:      slog.Default(),
		paths:    make(map[string]pathState),
		markers:  make(map[string]markerState),
		labels:   make(map[string]labelState),
		overlays: make(map[anim.OverlayKind]anim.Overlay),
	}
}

// Size reports the frame dimensions in pixels.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

func (c *Canvas) SetCamera(at journey.Coordinate, zoom float64, _ bool) {
	c.camAt, c.camZoom, c.camSet = at, zoom, true
}

func (c *Canvas) SetPath(id string, pts []journey.Coordinate, style anim.PathStyle) {
	if _, ok := c.paths[id]; !ok {
		c.pathOrder = append(c.pathOrder, id)
	}
	c.paths[id] = pathState{pts: pts, style: style}
}

func (c *Canvas) SetMarker(id string, at journey.Coordinate, style anim.MarkerStyle, opacity float64) {
	if _, ok := c.markers[id]; !ok {
		c.markerOrder = append(c.markerOrder, id)
	}
	c.markers[id] = markerState{at: at, style: style, opacity: opacity}
}

func (c *Canvas) SetLabel(id string, at journey.Coordinate, text string, style anim.LabelStyle, opacity float64) {
	if _, ok := c.labels[id]; !ok {
		c.labelOrder = append(c.labelOrder, id)
	}
	c.labels[id] = labelState{at: at, text: text, style: style, opacity: opacity}
}

func (c *Canvas) SetIcon(kind icon.Kind, at journey.Coordinate, p icon.Placement, opacity float64) {
	c.icon = iconState{kind: kind, at: at, place: p, opacity: opacity, visible: true}
}

func (c *Canvas) HideIcon() {
	c.icon.visible = false
}

func (c *Canvas) SetOverlay(o anim.Overlay) {
	c.overlays[o.Kind] = o
}

// Project maps a geo-coordinate to frame pixels at the current camera.
func (c *Canvas) Project(pt journey.Coordinate) (float64, float64, error) {
	if !c.camSet {
		return 0, 0, ErrNoCamera
	}
	px, py := track.GlobalPixel(pt, c.camZoom)
	cx, cy := track.GlobalPixel(c.camAt, c.camZoom)
	return px - cx + float64(c.w)/2, py - cy + float64(c.h)/2, nil
}

// Snapshot renders the retained state into a frame buffer drawn from the
// shared image pool; callers that recycle frames return them with
// system.PutImage. Tile failures leave grey squares; they never fail the
// frame.
func (c *Canvas) Snapshot(ctx context.Context) (image.Image, error) {
	buf := system.GetImage(image.Rect(0, 0, c.w, c.h))
	dc := gg.NewContextForRGBA(buf)
	dc.SetColor(color.NRGBA{R: 0xe8, G: 0xec, B: 0xef, A: 0xff})
	dc.Clear()

	if c.camSet {
		c.drawTiles(ctx, dc)
		c.drawPaths(dc)
		c.drawMarkers(dc)
		c.drawLabels(dc)
		c.drawIcon(dc)
	}
	c.drawAttribution(dc)
	c.drawOverlays(dc)

	return dc.Image(), nil
}

func (c *Canvas) drawTiles(ctx context.Context, dc *gg.Context) {
	zi := int(math.Floor(c.camZoom))
	if maxZ := int(c.fetcher.Style().MaxZoom); maxZ > 0 && zi > maxZ {
		zi = maxZ
	}
	if zi < 0 {
		zi = 0
	}
	// Fractional zoom upscales the nearest lower integer level.
	scale := math.Pow(2, c.camZoom-float64(zi))

	cx, cy := track.GlobalPixel(c.camAt, float64(zi))
	halfW := float64(c.w) / 2 / scale
	halfH := float64(c.h) / 2 / scale

	x0 := int(math.Floor((cx - halfW) / tiles.TileSize))
	x1 := int(math.Floor((cx + halfW) / tiles.TileSize))
	y0 := int(math.Floor((cy - halfH) / tiles.TileSize))
	y1 := int(math.Floor((cy + halfH) / tiles.TileSize))

	n := 1 << uint(zi)
	dc.Push()
	dc.Translate(float64(c.w)/2, float64(c.h)/2)
	dc.Scale(scale, scale)
	dc.Translate(-cx, -cy)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			if y < 0 || y >= n {
				continue
			}
			img, err := c.fetcher.Tile(ctx, zi, x, y)
			if err != nil {
				c.log.Debug("tile unavailable", "z", zi, "x", x, "y", y, "err", err)
				dc.SetColor(color.NRGBA{R: 0xd5, G: 0xd5, B: 0xd5, A: 0xff})
				dc.DrawRectangle(float64(x*tiles.TileSize), float64(y*tiles.TileSize), tiles.TileSize, tiles.TileSize)
				dc.Fill()
				continue
			}
			dc.DrawImage(img, x*tiles.TileSize, y*tiles.TileSize)
		}
	}
	dc.Pop()
}

func (c *Canvas) tracePath(dc *gg.Context, pts []journey.Coordinate) {
	for i, pt := range pts {
		x, y, err := c.Project(pt)
		if err != nil {
			return
		}
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
}

func (c *Canvas) drawPaths(dc *gg.Context) {
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, id := range c.pathOrder {
		p := c.paths[id]
		if len(p.pts) < 2 {
			continue
		}
		if p.style.Dashed {
			dc.SetDash(p.style.Width*2.5, p.style.Width*1.8)
		} else {
			dc.SetDash()
		}

		// White casing keeps the stroke readable over busy tiles.
		c.tracePath(dc, p.pts)
		dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb4})
		dc.SetLineWidth(p.style.Width + 3)
		dc.Stroke()

		c.tracePath(dc, p.pts)
		dc.SetColor(hexColor(p.style.Color, 1))
		dc.SetLineWidth(p.style.Width)
		dc.Stroke()
	}
	dc.SetDash()
}

func (c *Canvas) drawMarkers(dc *gg.Context) {
	for _, id := range c.markerOrder {
		m := c.markers[id]
		if m.opacity <= 0 {
			continue
		}
		x, y, err := c.Project(m.at)
		if err != nil {
			continue
		}
		dc.SetColor(white(m.opacity))
		dc.DrawCircle(x, y, m.style.Radius+2.5)
		dc.Fill()
		dc.SetColor(hexColor(m.style.Color, m.opacity))
		dc.DrawCircle(x, y, m.style.Radius)
		dc.Fill()
	}
}

func (c *Canvas) drawLabels(dc *gg.Context) {
	for _, id := range c.labelOrder {
		l := c.labels[id]
		if l.opacity <= 0 || l.text == "" {
			continue
		}
		x, y, err := c.Project(l.at)
		if err != nil {
			continue
		}
		dc.SetFontFace(c.faces.face(l.style.Size, true))
		ty := y - 14
		dc.SetColor(white(l.opacity * 0.9))
		for dx := -1.0; dx <= 1; dx++ {
			for dy := -1.0; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				dc.DrawStringAnchored(l.text, x+dx, ty+dy, 0.5, 1)
			}
		}
		dc.SetColor(hexColor(l.style.Color, l.opacity))
		dc.DrawStringAnchored(l.text, x, ty, 0.5, 1)
	}
}

func (c *Canvas) drawIcon(dc *gg.Context) {
	st := c.icon
	if !st.visible || st.opacity <= 0 || st.kind == icon.KindNone {
		return
	}
	cfg, ok := icon.Lookup(st.kind)
	if !ok {
		return
	}
	x, y, err := c.Project(st.at)
	if err != nil {
		return
	}
	size := float64(cfg.Size)

	dc.Push()
	dc.Translate(x, y)
	dc.Rotate(gg.Radians(st.place.AngleDeg))
	// Mirror composes inside the rotation, flipping the sprite itself.
	if st.place.Mirror {
		dc.Scale(-1, 1)
	}
	drawIconArt(dc, st.kind, size, st.opacity)
	dc.Pop()
}

func (c *Canvas) drawAttribution(dc *gg.Context) {
	attr := c.fetcher.Style().Attribution
	if attr == "" {
		return
	}
	dc.SetFontFace(c.faces.face(11, false))
	w, h := dc.MeasureString(attr)
	x := float64(c.w) - w - 6
	y := float64(c.h) - 5
	dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc8})
	dc.DrawRectangle(x-4, y-h-3, w+8, h+7)
	dc.Fill()
	dc.SetColor(color.NRGBA{R: 0x3c, G: 0x3c, B: 0x3c, A: 0xff})
	dc.DrawString(attr, x, y)
}

func (c *Canvas) drawOverlays(dc *gg.Context) {
	if o, ok := c.overlays[anim.OverlayTitle]; ok && o.Opacity > 0 {
		c.drawTitleCard(dc, o)
	}
	if o, ok := c.overlays[anim.OverlayEndCard]; ok && o.Opacity > 0 {
		c.drawEndCard(dc, o)
	}
	if o, ok := c.overlays[anim.OverlayStamp]; ok && o.Opacity > 0 {
		c.drawStamp(dc, o)
	}
}
