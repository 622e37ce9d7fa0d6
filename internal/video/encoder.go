package video

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

// FramePattern is the on-disk name of frame N inside the frames directory.
const FramePattern = "frame_%06d.png"

type Encoder interface {
	Assemble(ctx context.Context, framesDir, finalPath string, fps int) error
}

// FFmpegEncoder assembles a numbered PNG sequence into a video file.
type FFmpegEncoder struct {
	FFmpeg  string // путь к бинарнику, по умолчанию "ffmpeg"
	Codec   string // libx264, h264_nvenc, h264_videotoolbox
	Quality int
}

func (e *FFmpegEncoder) ffmpegPath() string {
	if e.FFmpeg != "" {
		return e.FFmpeg
	}
	return "ffmpeg"
}

func (e *FFmpegEncoder) buildArgs(framesDir, finalPath string, fps int) []string {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(fps),
		"-f", "image2",
		"-i", filepath.Join(framesDir, FramePattern),
		"-c:v", e.Codec,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
	}

	// Качество в зависимости от энкодера
	switch e.Codec {
	case "h264_videotoolbox":
		bitrate := e.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(e.Quality))
	default: // libx264
		args = append(args, "-crf", strconv.Itoa(e.Quality), "-preset", "medium")
	}

	args = append(args, finalPath)
	return args
}

func (e *FFmpegEncoder) Assemble(ctx context.Context, framesDir, finalPath string, fps int) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath(), e.buildArgs(framesDir, finalPath, fps)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg assemble error: %v, output: %s", err, string(out))
	}
	return nil
}
