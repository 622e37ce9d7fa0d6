package config

import (
	"os"
	"runtime"

	"github.com/joho/godotenv"
)

// Config собирает параметры запуска: значения по умолчанию,
// поверх них окружение (.env), поверх него флаги командной строки.
type Config struct {
	JourneyPath string
	OutputVideo string

	Width  int
	Height int
	FPS    int

	MaxZoom   float64
	CloseZoom float64

	TitleSeconds float64
	PanSeconds   float64
	RouteSeconds float64 // при 0 рассчитывается из числа участков
	EndSeconds   float64
	LegSeconds   float64

	Style     string
	CacheDir  string
	FramesDir string

	OSRMURL       string
	NominatimURL  string
	TileUserAgent string

	Encoder string
	Quality int

	MetricsAddr string
	PreviewAddr string

	Workers      int
	ShowStats    bool
	BuildVersion string
}

func Default() Config {
	return Config{
		Width:  1280,
		Height: 720,
		FPS:    30,

		MaxZoom:   17,
		CloseZoom: 13,

		TitleSeconds: 3.0,
		PanSeconds:   2.5,
		EndSeconds:   3.5,
		LegSeconds:   6.0,

		Style:     "osm",
		CacheDir:  "cache/tiles",
		FramesDir: "output/frames",

		OSRMURL:       "https://router.project-osrm.org",
		NominatimURL:  "https://nominatim.openstreetmap.org",
		TileUserAgent: "route2video/1.0 (+https://github.com/ivlev/route2video)",

		Quality: 23,

		PreviewAddr: "127.0.0.1:8080",

		Workers: runtime.NumCPU(),
	}
}

// ApplyEnv подтягивает настройки внешних сервисов из окружения.
// Файл .env загружается, если есть; его отсутствие не ошибка.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.OSRMURL = getenvDefault("OSRM_URL", c.OSRMURL)
	c.NominatimURL = getenvDefault("NOMINATIM_URL", c.NominatimURL)
	c.TileUserAgent = getenvDefault("TILE_USER_AGENT", c.TileUserAgent)
	c.CacheDir = getenvDefault("TILE_CACHE_DIR", c.CacheDir)
	c.MetricsAddr = getenvDefault("METRICS_ADDR", c.MetricsAddr)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
