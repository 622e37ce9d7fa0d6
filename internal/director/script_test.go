package director

import (
	"math"
	"testing"

	"github.com/ivlev/route2video/internal/anim"
)

func TestScriptAt(t *testing.T) {
	s := DefaultScript(10) // 3.0 + 2.5 + 10 + 3.5 = 19s

	cases := []struct {
		t        float64
		phase    anim.Phase
		progress float64
		done     bool
	}{
		{0, anim.PhaseTitle, 0, false},
		{1.5, anim.PhaseTitle, 0.5, false},
		{3.0, anim.PhasePan, 0, false},
		{4.25, anim.PhasePan, 0.5, false},
		{5.5, anim.PhaseRoute, 0, false},
		{10.5, anim.PhaseRoute, 0.5, false},
		{15.5, anim.PhaseEnd, 0, false},
		{17.25, anim.PhaseEnd, 0.5, false},
		{19, anim.PhaseEnd, 1, true},
		{30, anim.PhaseEnd, 1, true},
		{-1, anim.PhaseTitle, 0, false},
	}

	for _, c := range cases {
		phase, progress, done := s.At(c.t)
		if phase != c.phase || math.Abs(progress-c.progress) > 1e-9 || done != c.done {
			t.Errorf("At(%v) = (%v, %v, %v), want (%v, %v, %v)",
				c.t, phase, progress, done, c.phase, c.progress, c.done)
		}
	}
}

func TestScriptTotal(t *testing.T) {
	if got := DefaultScript(10).Total(); math.Abs(got-19) > 1e-9 {
		t.Errorf("Total() = %v, want 19", got)
	}
}

func TestScriptSkipsEmptyPhases(t *testing.T) {
	s := NewScript(0, 0, 10, 0)

	phase, progress, done := s.At(0)
	if phase != anim.PhaseRoute || progress != 0 || done {
		t.Errorf("At(0) = (%v, %v, %v), want route start", phase, progress, done)
	}
	if got := s.Total(); got != 10 {
		t.Errorf("Total() = %v, want 10", got)
	}
}
