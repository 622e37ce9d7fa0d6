package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	// Кэш тайлов и покадровая запись держат много дескрипторов одновременно.
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindFFmpeg возвращает путь к ffmpeg или ошибку, если его нет в PATH.
func FindFFmpeg() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg не найден в PATH: %w", err)
	}
	return path, nil
}

// BestEncoder выбирает аппаратный H.264-энкодер, если сборка ffmpeg его
// поддерживает.
func BestEncoder(ffmpegPath string) string {
	out, err := exec.Command(ffmpegPath, "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

// Приоритет: VideoToolbox (macOS) → NVENC → программный libx264.
func pickEncoder(encoderList string) string {
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoderList, enc) {
			return enc
		}
	}
	return "libx264"
}

// Preflight печатает сводку по ресурсам и предупреждает, когда кадры явно
// не поместятся в свободную память.
func Preflight(width, height, workers int) {
	cores, err := cpu.Counts(true)
	if err != nil {
		cores = 0
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить информацию о памяти: %v", err)
		return
	}
	fmt.Printf("[*] CPU: %d потоков | RAM свободно: %.1f GB\n", cores, float64(vm.Available)/(1<<30))

	// Продюсер держит в полёте примерно по кадру на воркера плюс текущий.
	frameBytes := uint64(width) * uint64(height) * 4
	inFlight := frameBytes * uint64(workers+2)
	if inFlight > vm.Available/2 {
		fmt.Printf("[!] Кадры %dx%d на %d воркерах займут ~%.1f GB, возможна нехватка памяти\n",
			width, height, workers, float64(inFlight)/(1<<30))
	}
}

// FindLatestJourney возвращает самый свежий yaml-файл маршрута в папке.
func FindLatestJourney(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".yaml", ".yml"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		// Кэш геометрии лежит рядом с файлами маршрутов, но сам он не маршрут.
		if strings.HasSuffix(name, ".resolved.yaml") || strings.HasSuffix(name, ".resolved.yml") {
			continue
		}
		isJourney := false
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				isJourney = true
				break
			}
		}
		if isJourney {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов маршрута", dir)
	}

	return latestFile, nil
}
