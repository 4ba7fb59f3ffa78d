package system

import (
	"time"

	"github.com/l1jgo/choreo/internal/core/action"
	coresys "github.com/l1jgo/choreo/internal/core/system"
)

// ActionSystem pulses the action scheduler once per frame. Phase 1 (Update).
type ActionSystem struct {
	sched     *action.Scheduler
	timeScale float64
	onError   action.ErrorHandler
	frame     int64
}

// NewActionSystem drives sched with each frame's dt multiplied by timeScale.
// A nil onError leaves failure reporting to the scheduler's logger.
func NewActionSystem(sched *action.Scheduler, timeScale float64, onError action.ErrorHandler) *ActionSystem {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &ActionSystem{sched: sched, timeScale: timeScale, onError: onError}
}

func (s *ActionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ActionSystem) Update(dt time.Duration) {
	s.frame++
	s.sched.Tick(time.Duration(float64(dt)*s.timeScale), s.onError)
}

// Frame returns the number of pulses delivered so far.
func (s *ActionSystem) Frame() int64 { return s.frame }

// Idle reports whether no runs remain on any target.
func (s *ActionSystem) Idle() bool { return s.sched.Len() == 0 }
