package gesture

import "github.com/ayusman/mudra/internal/interaction"

type selectPhase int

const (
	selectIdle selectPhase = iota
	selectArmed
)

// selectState is Idle or Armed{candidate}. elapsed counts evaluated frames
// since the last arming frame.
type selectState struct {
	phase     selectPhase
	candidate interaction.ElementID
	elapsed   int
}

// twoPhaseSelect arms on the arm pose over an element and fires one
// pointerselect for the armed candidate when the confirm pose follows within
// the confirm window. Any other pose disarms silently.
func twoPhaseSelect(h interaction.Handedness, in Hand, prev selectState, scene interaction.Scene, cfg Config) ([]interaction.Event, selectState) {
	if !in.Present {
		return nil, selectState{}
	}

	b := cfg.Bindings
	window := cfg.ConfirmWindow
	if window < 1 {
		window = 1
	}

	if b.Is(RoleSelectArm, in.Category) {
		// Holding the arm pose keeps re-arming over whatever is under the pointer.
		if hit, ok := scene.HitTest(in.client()); ok {
			return nil, selectState{phase: selectArmed, candidate: hit}
		}
		return nil, selectState{}
	}

	if prev.phase != selectArmed {
		return nil, selectState{}
	}

	elapsed := prev.elapsed + 1

	switch {
	case b.Is(RoleSelectConfirm, in.Category) && elapsed <= window:
		return []interaction.Event{interaction.Select(h, prev.candidate, in.Pointer)}, selectState{}
	case isNoGesture(in.Category) && elapsed < window:
		return nil, selectState{phase: selectArmed, candidate: prev.candidate, elapsed: elapsed}
	default:
		return nil, selectState{}
	}
}

func isNoGesture(category string) bool {
	return category == "" || category == CategoryNone
}
