package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/metrics"
	"github.com/ivlev/route2video/internal/track"
)

// TileSize is the edge of a raster tile in pixels.
const TileSize = 256

const (
	// Public tile servers ask for modest request rates.
	fetchRate = 20 // tiles per second during prefetch
	// Tiles a prefetch will accept per zoom level before skipping the level.
	prefetchTileLimit = 1500
	diskQuality       = 90 // webp quality for the disk cache
)

var ErrTileOutOfRange = errors.New("tiles: tile outside the world")

// Fetcher loads map tiles through a memory cache, a webp disk cache, and
// finally the style's tile server.
type Fetcher struct {
	style    Style
	cacheDir string
	ua       string
	client   *http.Client
	mem      sync.Map // "z/x/y" -> image.Image
	metrics  *metrics.Collector
	log      *slog.Logger
}

func NewFetcher(style Style, cacheDir, userAgent string, m *metrics.Collector) *Fetcher {
	return &Fetcher{
		style:    style,
		cacheDir: cacheDir,
		ua:       userAgent,
		client:   &http.Client{Timeout: 10 * time.Second},
		metrics:  m,
		log:      slog.Default(),
	}
}

// Style returns the fetcher's tile style.
func (f *Fetcher) Style() Style { return f.style }

// Tile returns one 256px tile. X wraps around the antimeridian; Y outside the
// world is an error.
func (f *Fetcher) Tile(ctx context.Context, z, x, y int) (image.Image, error) {
	if z < 0 || z > 30 {
		return nil, fmt.Errorf("%w: zoom %d", ErrTileOutOfRange, z)
	}
	n := 1 << uint(z)
	x = ((x % n) + n) % n
	if y < 0 || y >= n {
		return nil, fmt.Errorf("%w: y=%d at z=%d", ErrTileOutOfRange, y, z)
	}

	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	if img, ok := f.mem.Load(key); ok {
		f.metrics.TileHit()
		return img.(image.Image), nil
	}

	if img, err := f.loadDisk(z, x, y); err == nil {
		f.metrics.TileHit()
		f.mem.Store(key, img)
		return img, nil
	}

	f.metrics.TileMiss()
	img, err := f.download(ctx, z, x, y)
	if err != nil {
		return nil, err
	}
	f.saveDisk(z, x, y, img)
	f.mem.Store(key, img)
	return img, nil
}

func (f *Fetcher) diskPath(z, x, y int) string {
	return filepath.Join(f.cacheDir, f.style.Name, strconv.Itoa(z), strconv.Itoa(x), strconv.Itoa(y)+".webp")
}

func (f *Fetcher) loadDisk(z, x, y int) (image.Image, error) {
	if f.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(f.diskPath(z, x, y))
	if err != nil {
		return nil, err
	}
	return webp.Decode(bytes.NewReader(data))
}

func (f *Fetcher) saveDisk(z, x, y int, img image.Image) {
	if f.cacheDir == "" {
		return
	}
	path := f.diskPath(z, x, y)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.log.Warn("tile cache mkdir failed", "err", err)
		return
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: diskQuality}); err != nil {
		f.log.Warn("tile cache encode failed", "err", err)
		return
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		f.log.Warn("tile cache write failed", "err", err)
	}
}

func (f *Fetcher) download(ctx context.Context, z, x, y int) (image.Image, error) {
	url := strings.Replace(f.style.URLTemplate, "{z}", strconv.Itoa(z), 1)
	url = strings.Replace(url, "{x}", strconv.Itoa(x), 1)
	url = strings.Replace(url, "{y}", strconv.Itoa(y), 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.ua)
	for k, v := range f.style.Headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiles: download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiles: download %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tiles: read %s: %w", url, err)
	}
	f.metrics.ObserveTileFetch(time.Since(started))
	return decodeTile(data)
}

// decodeTile tries webp first, since some CDNs serve it regardless of the
// requested extension, then the stdlib-registered formats.
func decodeTile(data []byte) (image.Image, error) {
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("tiles: decode: %w", err)
	}
	return img, nil
}

// TileRange returns the inclusive tile rectangle covering the bound at an
// integer zoom.
func TileRange(b orb.Bound, z int) (x0, y0, x1, y1 int) {
	px0, py0 := track.GlobalPixel(journey.Coordinate{Lat: b.Max.Lat(), Lng: b.Min.Lon()}, float64(z))
	px1, py1 := track.GlobalPixel(journey.Coordinate{Lat: b.Min.Lat(), Lng: b.Max.Lon()}, float64(z))

	limit := 1<<uint(z) - 1
	clamp := func(v float64) int {
		t := int(math.Floor(v / TileSize))
		if t < 0 {
			return 0
		}
		if t > limit {
			return limit
		}
		return t
	}
	return clamp(px0), clamp(py0), clamp(px1), clamp(py1)
}

// Prefetch warms the caches for every integer zoom the animation can visit
// inside the bound, padded one tile on each side for camera overshoot.
// Individual tile failures are logged, not fatal; the canvas draws missing
// tiles as grey squares.
func (f *Fetcher) Prefetch(ctx context.Context, b orb.Bound, zooms []float64, concurrency int) error {
	if len(zooms) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	minZ, maxZ := zooms[0], zooms[0]
	for _, z := range zooms[1:] {
		minZ = math.Min(minZ, z)
		maxZ = math.Max(maxZ, z)
	}

	type coord struct{ z, x, y int }
	var list []coord
	for z := int(minZ); z <= int(maxZ); z++ {
		x0, y0, x1, y1 := TileRange(b, z)
		n := 1 << uint(z)
		x0, y0 = max(x0-1, 0), max(y0-1, 0)
		x1, y1 = min(x1+1, n-1), min(y1+1, n-1)

		count := (x1 - x0 + 1) * (y1 - y0 + 1)
		if count > prefetchTileLimit {
			f.log.Warn("skipping prefetch level, too many tiles", "zoom", z, "tiles", count)
			continue
		}
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				list = append(list, coord{z, x, y})
			}
		}
	}
	if len(list) == 0 {
		return nil
	}

	bar := progressbar.Default(int64(len(list)), "tiles")
	limiter := time.NewTicker(time.Second / fetchRate)
	defer limiter.Stop()

	g, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(concurrency))
	for _, c := range list {
		c := c
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			select {
			case <-limiter.C:
			case <-ctx.Done():
				return ctx.Err()
			}
			if _, err := f.Tile(ctx, c.z, c.x, c.y); err != nil {
				f.log.Warn("tile prefetch failed", "z", c.z, "x", c.x, "y", c.y, "err", err)
			}
			bar.Add(1)
			return nil
		})
	}
	return g.Wait()
}
