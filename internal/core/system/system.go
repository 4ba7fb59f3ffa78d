package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhasePreUpdate Phase = iota // 0: deliver last frame's events
	PhaseUpdate                 // 1: advance the action scheduler
	PhasePersist                // 2: flush the fault journal
	PhaseCleanup                // 3: destroy queued nodes
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
