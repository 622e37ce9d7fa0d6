package anim

// Phase is one stage of the animation. Phases run strictly in order and are
// never revisited; each is driven by a progress fraction in [0,1].
type Phase int

const (
	PhaseTitle Phase = iota
	PhasePan
	PhaseRoute
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseTitle:
		return "title"
	case PhasePan:
		return "pan"
	case PhaseRoute:
		return "route"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}
