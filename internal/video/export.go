package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ivlev/route2video/internal/director"
	"github.com/ivlev/route2video/internal/metrics"
)

// Snapshotter produces the current frame image; *render.Canvas satisfies it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (image.Image, error)
}

// Exporter drives the frame sequencer over every planned frame, writes the
// PNG sequence through a worker pool, and assembles the final video.
// Кадры нумеруются детерминированно, поэтому прерванный экспорт продолжается
// с первого отсутствующего файла.
type Exporter struct {
	Canvas    Snapshotter
	Sequencer *director.FrameSequencer
	Planned   int
	FramesDir string
	Output    string
	FPS       int
	Workers   int
	Encoder   Encoder
	Metrics   *metrics.Collector

	ShowStats    bool
	BuildVersion string
}

type Report struct {
	Frames     int
	Drawn      int
	Frozen     int
	Resumed    int
	RenderTime time.Duration
	EncodeTime time.Duration
	TotalTime  time.Duration
}

type frameJob struct {
	idx int
	img image.Image
}

func (p *Exporter) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()

	if p.Planned <= 0 {
		return nil, fmt.Errorf("нет кадров для экспорта")
	}
	if err := os.MkdirAll(p.FramesDir, 0755); err != nil {
		return nil, err
	}

	resume := resumePoint(p.FramesDir, p.Planned)
	if resume > 0 && resume < p.Planned {
		fmt.Printf("[*] Возобновление экспорта с кадра %d/%d\n", resume, p.Planned)
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan frameJob, workers*2)
	var wgEncode sync.WaitGroup
	var failed atomic.Int64

	// Пул кодирования PNG. Файлы именуются по индексу, порядок записи не важен.
	for w := 0; w < workers; w++ {
		wgEncode.Add(1)
		go func() {
			defer wgEncode.Done()
			buf := new(bytes.Buffer)
			for job := range jobs {
				encodeStart := time.Now()
				buf.Reset()
				if err := png.Encode(buf, job.img); err != nil {
					log.Printf("[!] Ошибка кодирования кадра %d: %v", job.idx, err)
					failed.Add(1)
					continue
				}
				p.Metrics.ObserveFrameEncode(time.Since(encodeStart))

				path := filepath.Join(p.FramesDir, fmt.Sprintf(FramePattern, job.idx))
				if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
					log.Printf("[!] Ошибка записи кадра %d: %v", job.idx, err)
					failed.Add(1)
				}
			}
		}()
	}

	report := &Report{Frames: p.Planned, Resumed: resume}
	bar := progressbar.Default(int64(p.Planned), "Frames")
	renderStart := time.Now()

	// Продюсер строго последователен: состояние сцены детерминировано по
	// номеру кадра, воркеры получают уже готовые изображения.
	var lastImg image.Image
	for i := 0; i < p.Planned; i++ {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wgEncode.Wait()
			return nil, err
		}

		drawn, _, err := p.Sequencer.Step(i)
		if err != nil {
			close(jobs)
			wgEncode.Wait()
			return nil, err
		}
		if drawn {
			report.Drawn++
		} else {
			report.Frozen++
			p.Metrics.PauseFrame()
		}

		if i < resume {
			bar.Add(1)
			continue
		}

		// Замороженные кадры повторяют предыдущую картинку; после резюма
		// первый кадр снимается с холста независимо от drawn.
		if drawn || lastImg == nil {
			img, err := p.Canvas.Snapshot(ctx)
			if err != nil {
				close(jobs)
				wgEncode.Wait()
				return nil, fmt.Errorf("кадр %d: %w", i, err)
			}
			lastImg = img
			p.Metrics.FrameRendered()
		}
		jobs <- frameJob{idx: i, img: lastImg}
		bar.Add(1)
	}
	close(jobs)
	wgEncode.Wait()
	report.RenderTime = time.Since(renderStart)

	if n := failed.Load(); n > 0 {
		return nil, fmt.Errorf("%d кадров не записаны, см. лог выше", n)
	}

	fmt.Println("[*] Сборка видео...")
	encodeStart := time.Now()
	if err := p.Encoder.Assemble(ctx, p.FramesDir, p.Output, p.FPS); err != nil {
		return nil, err
	}
	report.EncodeTime = time.Since(encodeStart)
	report.TotalTime = time.Since(startTime)

	if p.ShowStats {
		p.printReport(report)
	}
	return report, nil
}

func (p *Exporter) printReport(r *Report) {
	effectiveFPS := 0.0
	if r.TotalTime > 0 {
		effectiveFPS = float64(r.Frames) / r.TotalTime.Seconds()
	}
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Frames: %d (drawn %d, frozen %d, resumed %d)\n"+
			"Rendering: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Total: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.BuildVersion, r.Frames, r.Drawn, r.Frozen, r.Resumed,
		r.RenderTime.Seconds(), r.EncodeTime.Seconds(), r.TotalTime.Seconds(), effectiveFPS,
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Frames: %d | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.BuildVersion,
		filepath.Base(p.Output),
		r.Frames,
		r.RenderTime.Seconds(),
		r.EncodeTime.Seconds(),
		effectiveFPS,
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

// resumePoint возвращает индекс первого отсутствующего кадра.
func resumePoint(dir string, planned int) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	present := make(map[int]bool, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "frame_") || !strings.HasSuffix(name, ".png") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "frame_"), ".png"))
		if err != nil {
			continue
		}
		present[idx] = true
	}
	for i := 0; i < planned; i++ {
		if !present[i] {
			return i
		}
	}
	return planned
}
