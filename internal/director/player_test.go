package director

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/route2video/internal/anim"
)

type pausePoint struct {
	at       float64
	duration float64
	fired    bool
}

// fakeCore emits a pause signal the first time route progress crosses each
// configured point, mimicking the renderer's one-shot boundary pauses.
type fakeCore struct {
	pausePoints  []pausePoint
	renders      int
	lastPhase    anim.Phase
	lastProgress float64
}

func (c *fakeCore) Render(phase anim.Phase, progress float64) anim.PauseSignal {
	c.renders++
	c.lastPhase, c.lastProgress = phase, progress
	if phase != anim.PhaseRoute {
		return anim.PauseSignal{}
	}
	for i := range c.pausePoints {
		pp := &c.pausePoints[i]
		if !pp.fired && progress >= pp.at {
			pp.fired = true
			return anim.PauseSignal{ShouldPause: true, Duration: pp.duration, AfterLeg: i}
		}
	}
	return anim.PauseSignal{}
}

// TestPlayerPauseTotalsExact drives the player with irregular frame times and
// checks the pause bookkeeping: the swallowed wall time must equal the sum of
// the configured pause durations no matter how the ticks fall.
func TestPlayerPauseTotalsExact(t *testing.T) {
	core := &fakeCore{pausePoints: []pausePoint{
		{at: 0.3, duration: 1.5},
		{at: 0.7, duration: 0.75},
	}}
	p := NewPlayer(core, NewScript(0, 0, 10, 0))

	start := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	steps := []time.Duration{
		13 * time.Millisecond, 29 * time.Millisecond, 7 * time.Millisecond,
		41 * time.Millisecond, 3 * time.Millisecond, 17 * time.Millisecond,
	}

	now := start
	for i := 0; ; i++ {
		if i > 100000 {
			t.Fatalf("player never finished")
		}
		if !p.Advance(now) {
			break
		}
		now = now.Add(steps[i%len(steps)])
	}

	if got := p.PausedSeconds(); math.Abs(got-2.25) > 1e-9 {
		t.Errorf("paused total %v, want 2.25", got)
	}
	wall := now.Sub(start).Seconds()
	if wall < 12.25 || wall > 12.35 {
		t.Errorf("wall time %v, want script length plus pauses", wall)
	}
}

func TestPlayerUserPauseFreezesProgress(t *testing.T) {
	core := &fakeCore{}
	p := NewPlayer(core, NewScript(0, 0, 10, 0))

	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	p.Advance(now)
	now = now.Add(time.Second)
	p.Advance(now)
	if math.Abs(core.lastProgress-0.1) > 1e-9 {
		t.Fatalf("progress after 1s: %v", core.lastProgress)
	}

	p.Pause()
	rendersBefore := core.renders
	for i := 0; i < 5; i++ {
		now = now.Add(time.Second)
		if !p.Advance(now) {
			t.Fatalf("player must stay alive while paused")
		}
	}
	if core.renders != rendersBefore {
		t.Errorf("paused player must not render")
	}

	p.Resume()
	now = now.Add(500 * time.Millisecond)
	p.Advance(now)
	if math.Abs(core.lastProgress-0.15) > 1e-9 {
		t.Errorf("progress after resume: %v, want 0.15", core.lastProgress)
	}
}

func TestPlayerFinishes(t *testing.T) {
	core := &fakeCore{}
	p := NewPlayer(core, NewScript(0, 0, 0.1, 0))

	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100 && p.Advance(now); i++ {
		now = now.Add(16 * time.Millisecond)
	}
	if !p.Done() {
		t.Fatalf("player must finish a 0.1s script")
	}
	if core.lastPhase != anim.PhaseEnd || core.lastProgress != 1 {
		t.Errorf("final render was (%v, %v), want the end card held", core.lastPhase, core.lastProgress)
	}

	renders := core.renders
	if p.Advance(now.Add(time.Second)) {
		t.Errorf("finished player must report done")
	}
	if core.renders != renders {
		t.Errorf("finished player must not render")
	}
}
