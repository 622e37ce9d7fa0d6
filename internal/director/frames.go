package director

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/route2video/internal/journey"
)

// ErrFrameOrder reports a Step call whose index is not the next expected
// frame. The sequencer is strictly sequential so a resumed export can replay
// its state deterministically.
var ErrFrameOrder = errors.New("director: frame stepped out of order")

// FrameSequencer drives a Core on an exact frame grid for export. Waypoint
// pauses become whole frozen frames: Step reports them as not drawn and the
// caller duplicates the previous image. Effective time for the core is the
// frame index minus all frozen frames emitted so far, which makes an exported
// run frame-for-frame identical to a real-time run with the same pauses.
type FrameSequencer struct {
	core   Core
	script Script
	fps    int

	next         int
	pauseFrames  int
	pausedFrames int
}

func NewFrameSequencer(core Core, script Script, fps int) *FrameSequencer {
	if fps <= 0 {
		fps = 30
	}
	return &FrameSequencer{core: core, script: script, fps: fps}
}

// Step advances to the given frame, which must be exactly one past the
// previous call. drawn reports whether the core rendered new content; a
// frozen pause frame repeats the previous image. done marks the final frame.
func (f *FrameSequencer) Step(frame int) (drawn bool, done bool, err error) {
	if frame != f.next {
		return false, false, fmt.Errorf("%w: got %d, want %d", ErrFrameOrder, frame, f.next)
	}
	f.next++

	if f.pauseFrames > 0 {
		f.pauseFrames--
		f.pausedFrames++
		return false, false, nil
	}

	effective := float64(frame-f.pausedFrames) / float64(f.fps)
	phase, progress, scriptDone := f.script.At(effective)
	if sig := f.core.Render(phase, progress); sig.ShouldPause {
		f.pauseFrames = int(math.Round(sig.Duration * float64(f.fps)))
	}
	return true, scriptDone, nil
}

// PausedFrames reports how many frozen frames have been emitted so far.
func (f *FrameSequencer) PausedFrames() int { return f.pausedFrames }

// PlannedFrames reports the exact frame count of a full run, frozen pause
// frames included, for progress reporting and resume bookkeeping.
func PlannedFrames(script Script, legs []journey.Leg, fps int) int {
	n := int(math.Ceil(script.Total()*float64(fps))) + 1
	for i := 0; i < len(legs)-1; i++ {
		n += int(math.Round(legs[i].PauseAfter * float64(fps)))
	}
	return n
}
