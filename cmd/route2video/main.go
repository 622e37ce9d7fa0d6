package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/route2video/internal/anim"
	"github.com/ivlev/route2video/internal/config"
	"github.com/ivlev/route2video/internal/director"
	"github.com/ivlev/route2video/internal/journey"
	"github.com/ivlev/route2video/internal/logging"
	"github.com/ivlev/route2video/internal/metrics"
	"github.com/ivlev/route2video/internal/preview"
	"github.com/ivlev/route2video/internal/render"
	"github.com/ivlev/route2video/internal/route"
	"github.com/ivlev/route2video/internal/system"
	"github.com/ivlev/route2video/internal/tiles"
	"github.com/ivlev/route2video/internal/track"
	"github.com/ivlev/route2video/internal/video"
)

const buildVersion = "route2video 1.0"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()
	logging.Init()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/journeys", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	journeyPtr := flag.String("journey", "", "Путь к YAML маршрута (по умолчанию: самый свежий файл в input/journeys/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	durationPtr := flag.Float64("duration", 0, "Длительность фазы маршрута в секундах (если 0, рассчитывается из -leg-duration)")
	legDurationPtr := flag.Float64("leg-duration", cfg.LegSeconds, "Длительность показа одного участка в секундах")
	widthPtr := flag.Int("width", cfg.Width, "Ширина")
	heightPtr := flag.Int("height", cfg.Height, "Высота")
	fpsPtr := flag.Int("fps", cfg.FPS, "FPS")
	workersPtr := flag.Int("workers", cfg.Workers, "Потоки")
	stylePtr := flag.String("style", cfg.Style, "Стиль карты: "+strings.Join(tiles.Names(), ", "))
	maxZoomPtr := flag.Float64("max-zoom", cfg.MaxZoom, "Максимальный зум камеры на участке")
	closeZoomPtr := flag.Float64("close-zoom", cfg.CloseZoom, "Зум для коротких участков")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	initPtr := flag.Bool("init", false, "Создать шаблон маршрута и выйти")
	resolvePtr := flag.Bool("resolve", false, "Пересчитать геометрию маршрута, игнорируя кэш")
	previewPtr := flag.Bool("preview", false, "Предпросмотр в браузере вместо экспорта")
	previewAddrPtr := flag.String("preview-addr", cfg.PreviewAddr, "Адрес предпросмотра")
	statsPtr := flag.Bool("stats", false, "Записать отчет о ресурсах в benchmark.log")

	flag.Parse()

	cfg.Width, cfg.Height = *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		cfg.Width, cfg.Height = 1280, 720
	case "9:16":
		cfg.Width, cfg.Height = 720, 1280
	case "4:5":
		cfg.Width, cfg.Height = 1080, 1350
	}
	cfg.FPS = *fpsPtr
	cfg.Workers = *workersPtr
	cfg.Style = *stylePtr
	cfg.MaxZoom = *maxZoomPtr
	cfg.CloseZoom = *closeZoomPtr
	cfg.RouteSeconds = *durationPtr
	cfg.LegSeconds = *legDurationPtr
	cfg.PreviewAddr = *previewAddrPtr
	cfg.ShowStats = *statsPtr
	cfg.BuildVersion = buildVersion

	if *initPtr {
		path := *journeyPtr
		if path == "" {
			path = filepath.Join("input/journeys", "journey.yaml")
		}
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("[-] Файл уже существует: %s", path)
		}
		if err := os.WriteFile(path, []byte(journey.Template), 0644); err != nil {
			log.Fatalf("[-] Ошибка записи шаблона: %v", err)
		}
		fmt.Printf("[+] Шаблон маршрута создан: %s\n", path)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journeyPath := *journeyPtr
	if journeyPath == "" {
		latest, err := system.FindLatestJourney("input/journeys")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Создайте шаблон: route2video -init", err)
		}
		journeyPath = latest
		fmt.Printf("[*] Выбран маршрут: %s\n", journeyPath)
	}
	cfg.JourneyPath = journeyPath

	j, err := journey.Load(journeyPath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения маршрута: %v", err)
	}
	if err := j.Validate(); err != nil {
		log.Fatalf("[-] Некорректный маршрут: %v", err)
	}

	// Стиль из файла маршрута действует, пока флаг не задан явно.
	styleSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "style" {
			styleSet = true
		}
	})
	if j.Style != "" && !styleSet {
		cfg.Style = j.Style
	}
	style, ok := tiles.StyleByName(cfg.Style)
	if !ok {
		log.Fatalf("[-] Неизвестный стиль карты: %s (доступны: %s)", cfg.Style, strings.Join(tiles.Names(), ", "))
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector()
		collector.Serve(cfg.MetricsAddr)
	}

	rt := loadOrResolve(ctx, &cfg, j, *resolvePtr)

	routeSeconds := cfg.RouteSeconds
	if routeSeconds <= 0 {
		routeSeconds = float64(len(rt.Legs)) * cfg.LegSeconds
	}
	script := director.NewScript(cfg.TitleSeconds, cfg.PanSeconds, routeSeconds, cfg.EndSeconds)

	fetcher := tiles.NewFetcher(style, cfg.CacheDir, cfg.TileUserAgent, collector)

	if *previewPtr {
		factory := func() (*render.Canvas, *director.Player, error) {
			canvas := render.NewCanvas(cfg.Width, cfg.Height, fetcher)
			canvas.ShareURL = j.ShareURL
			core, err := anim.NewRenderer(animConfig(cfg, j, anim.RealTimeSmoothing), rt, canvas)
			if err != nil {
				return nil, nil, err
			}
			return canvas, director.NewPlayer(core, script), nil
		}
		fmt.Printf("[*] Предпросмотр: http://%s/\n", cfg.PreviewAddr)
		if err := preview.NewServer(factory, cfg.FPS, collector).Run(ctx, cfg.PreviewAddr); err != nil {
			log.Fatalf("[-] Ошибка предпросмотра: %v", err)
		}
		return
	}

	ffmpegPath, err := system.FindFFmpeg()
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	encoderName := system.BestEncoder(ffmpegPath)
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}
	cfg.Encoder = encoderName

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}
	cfg.Quality = quality

	system.Preflight(cfg.Width, cfg.Height, cfg.Workers)

	baseName := filepath.Base(journeyPath)
	cleanName := strings.ReplaceAll(strings.TrimSuffix(baseName, filepath.Ext(baseName)), " ", "_")

	finalOutput := *outputPtr
	if finalOutput == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}
	cfg.OutputVideo = finalOutput

	// Кадры лежат в папке по имени маршрута, чтобы прерванный экспорт
	// возобновлялся, а таймстамп в имени видео этому не мешал.
	framesDir := filepath.Join(cfg.FramesDir, cleanName)

	b := track.Bounds(rt.Legs)
	zooms := append(track.ZoomLevels(rt.Legs, cfg.MaxZoom, cfg.CloseZoom, cfg.Width, cfg.Height),
		track.FitZoom(b, cfg.Width, cfg.Height))
	fmt.Println("[*] Прогрев кэша тайлов...")
	if err := fetcher.Prefetch(ctx, b, zooms, cfg.Workers); err != nil {
		log.Fatalf("[-] Прогрев кэша прерван: %v", err)
	}

	canvas := render.NewCanvas(cfg.Width, cfg.Height, fetcher)
	canvas.ShareURL = j.ShareURL
	core, err := anim.NewRenderer(animConfig(cfg, j, anim.FrameExactSmoothing), rt, canvas)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации анимации: %v", err)
	}

	exp := &video.Exporter{
		Canvas:       canvas,
		Sequencer:    director.NewFrameSequencer(core, script, cfg.FPS),
		Planned:      director.PlannedFrames(script, rt.Legs, cfg.FPS),
		FramesDir:    framesDir,
		Output:       cfg.OutputVideo,
		FPS:          cfg.FPS,
		Workers:      cfg.Workers,
		Encoder:      &video.FFmpegEncoder{FFmpeg: ffmpegPath, Codec: cfg.Encoder, Quality: cfg.Quality},
		Metrics:      collector,
		ShowStats:    cfg.ShowStats,
		BuildVersion: cfg.BuildVersion,
	}

	if _, err := exp.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// loadOrResolve возвращает геометрию маршрута: из кэша рядом с файлом
// маршрута, если он свежее, иначе через OSRM/Nominatim с записью кэша.
// force пересчитывает геометрию даже при свежем кэше.
func loadOrResolve(ctx context.Context, cfg *config.Config, j *journey.Journey, force bool) *journey.Route {
	resolvedPath := strings.TrimSuffix(cfg.JourneyPath, filepath.Ext(cfg.JourneyPath)) + ".resolved.yaml"

	if !force && cacheFresh(cfg.JourneyPath, resolvedPath) {
		rt, err := journey.LoadRoute(resolvedPath)
		if err == nil {
			fmt.Printf("[*] Геометрия из кэша: %s\n", resolvedPath)
			return rt
		}
		log.Printf("[!] Кэш маршрута не прочитан: %v", err)
	}

	fmt.Println("[*] Запрос геометрии маршрута...")
	resolver := route.NewResolver(
		route.NewOSRM(cfg.OSRMURL, cfg.TileUserAgent),
		route.NewNominatim(cfg.NominatimURL, cfg.TileUserAgent),
	)
	// Относительные пути gpx отсчитываются от файла маршрута.
	resolver.GPXDir = filepath.Dir(cfg.JourneyPath)
	rt, err := resolver.Resolve(ctx, j)
	if err != nil {
		log.Fatalf("[-] Ошибка маршрутизации: %v", err)
	}
	if err := journey.SaveRoute(rt, resolvedPath); err != nil {
		log.Printf("[!] Кэш маршрута не сохранен: %v", err)
	}
	return rt
}

func cacheFresh(srcPath, cachePath string) bool {
	src, err := os.Stat(srcPath)
	if err != nil {
		return false
	}
	cache, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	return cache.ModTime().After(src.ModTime())
}

func animConfig(cfg config.Config, j *journey.Journey, smoothing anim.SmoothingProfile) anim.Config {
	return anim.Config{
		ViewportW: cfg.Width,
		ViewportH: cfg.Height,
		MaxZoom:   cfg.MaxZoom,
		CloseZoom: cfg.CloseZoom,
		Title:     j.Title,
		Date:      j.Date,
		Stamp:     j.Stamp,
		Smoothing: smoothing,
	}
}
