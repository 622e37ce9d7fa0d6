package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the process metrics registry. A nil *Collector is a valid
// no-op, so optional instrumentation never needs guarding at call sites.
type Collector struct {
	reg *prometheus.Registry

	FramesRendered prometheus.Counter
	PauseFrames    prometheus.Counter

	TileHits    prometheus.Counter
	TileMisses  prometheus.Counter
	TileFetches prometheus.Histogram

	FrameEncode prometheus.Histogram

	PreviewClients prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route2video_frames_rendered_total",
			Help: "Total frames drawn by the animation core.",
		}),
		PauseFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route2video_pause_frames_total",
			Help: "Total frozen frames emitted for waypoint pauses.",
		}),
		TileHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route2video_tile_cache_hits_total",
			Help: "Tile requests served from the memory or disk cache.",
		}),
		TileMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "route2video_tile_cache_misses_total",
			Help: "Tile requests that went to the network.",
		}),
		TileFetches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "route2video_tile_fetch_duration_seconds",
			Help:    "Duration of tile downloads.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		FrameEncode: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "route2video_frame_encode_duration_seconds",
			Help:    "Duration of per-frame PNG encodes during export.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PreviewClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "route2video_preview_clients",
			Help: "Connected preview websocket clients.",
		}),
	}

	reg.MustRegister(
		c.FramesRendered, c.PauseFrames,
		c.TileHits, c.TileMisses, c.TileFetches,
		c.FrameEncode, c.PreviewClients,
	)
	return c
}

func (c *Collector) FrameRendered() {
	if c != nil {
		c.FramesRendered.Inc()
	}
}

func (c *Collector) PauseFrame() {
	if c != nil {
		c.PauseFrames.Inc()
	}
}

func (c *Collector) TileHit() {
	if c != nil {
		c.TileHits.Inc()
	}
}

func (c *Collector) TileMiss() {
	if c != nil {
		c.TileMisses.Inc()
	}
}

func (c *Collector) ObserveTileFetch(d time.Duration) {
	if c != nil {
		c.TileFetches.Observe(d.Seconds())
	}
}

func (c *Collector) ObserveFrameEncode(d time.Duration) {
	if c != nil {
		c.FrameEncode.Observe(d.Seconds())
	}
}

func (c *Collector) PreviewConnected() {
	if c != nil {
		c.PreviewClients.Inc()
	}
}

func (c *Collector) PreviewDisconnected() {
	if c != nil {
		c.PreviewClients.Dec()
	}
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background. A nil collector or empty
// address serves nothing.
func (c *Collector) Serve(addr string) *http.Server {
	if c == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("metrics server stopped", "err", err)
		}
	}()
	slog.Info("metrics listening", "addr", addr)
	return srv
}
