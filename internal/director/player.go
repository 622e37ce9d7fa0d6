package director

import (
	"math"
	"time"

	"github.com/ivlev/route2video/internal/anim"
)

// Core is the part of the animation the drivers advance. *anim.Renderer
// satisfies it.
type Core interface {
	Render(phase anim.Phase, progress float64) anim.PauseSignal
}

// Player drives a Core against the wall clock for live preview. The player
// owns all timekeeping: elapsed playback excludes both waypoint pauses and
// user pauses, so the core only ever sees effective time.
type Player struct {
	core   Core
	script Script

	started     bool
	start       time.Time
	last        time.Time
	pausedTotal float64 // seconds swallowed by pauses so far
	pauseLeft   float64 // remaining seconds of the active waypoint pause
	userPaused  bool
	done        bool
}

func NewPlayer(core Core, script Script) *Player {
	return &Player{core: core, script: script}
}

// Advance renders the frame for the given instant and returns false once the
// script has fully played out. While a pause is active nothing is rendered
// and the previous frame stands.
func (p *Player) Advance(now time.Time) bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		p.start, p.last = now, now
	}

	dt := now.Sub(p.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	p.last = now

	if p.userPaused {
		p.pausedTotal += dt
		return true
	}

	if p.pauseLeft > 0 {
		consumed := math.Min(dt, p.pauseLeft)
		p.pauseLeft -= consumed
		p.pausedTotal += consumed
		if p.pauseLeft > 0 {
			return true
		}
	}

	elapsed := now.Sub(p.start).Seconds() - p.pausedTotal
	phase, progress, done := p.script.At(elapsed)
	if sig := p.core.Render(phase, progress); sig.ShouldPause {
		p.pauseLeft = sig.Duration
	}
	p.done = done
	return !p.done
}

// Pause freezes playback until Resume. Frozen wall time never advances the
// show.
func (p *Player) Pause() { p.userPaused = true }

// Resume continues playback after a user pause.
func (p *Player) Resume() { p.userPaused = false }

// Paused reports whether the user has playback frozen.
func (p *Player) Paused() bool { return p.userPaused }

// Done reports whether the script has fully played out.
func (p *Player) Done() bool { return p.done }

// PausedSeconds reports the wall time swallowed by pauses so far.
func (p *Player) PausedSeconds() float64 { return p.pausedTotal }
