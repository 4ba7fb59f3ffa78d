package effect

import "github.com/l1jgo/choreo/internal/core/action"

// Wait does nothing for its duration.
type Wait struct{ action.Base }

func NewWait(duration float64) (*Wait, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &Wait{Base: b}, nil
}

func (w *Wait) Reversed() action.Action { return w }

// Call invokes fn once, instantly.
type Call struct {
	action.Base
	fn func(target action.Target) error
}

func NewCall(fn func(target action.Target) error) *Call {
	return &Call{fn: fn}
}

func (c *Call) Reversed() action.Action { return c }

func (c *Call) OnUpdate(target action.Target, _, _ float64, _ *action.Ticker, _ float64) error {
	return c.fn(target)
}

// StepFunc is a custom per-tick effect body. t is eased progress, dt its
// change since the previous tick.
type StepFunc func(target action.Target, t, dt float64) error

// Step runs a StepFunc every tick for its duration.
type Step struct {
	action.Base
	fn StepFunc
}

func NewStep(duration float64, fn StepFunc) (*Step, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &Step{Base: b, fn: fn}, nil
}

// Reversed returns the step unchanged; an arbitrary function has no inverse.
func (s *Step) Reversed() action.Action { return s }

func (s *Step) OnUpdate(target action.Target, t, dt float64, _ *action.Ticker, _ float64) error {
	return s.fn(target, t, dt)
}

// RemoveFromParent detaches the target from its parent, instantly.
type RemoveFromParent struct{ action.Base }

func NewRemoveFromParent() *RemoveFromParent { return &RemoveFromParent{} }

func (r *RemoveFromParent) Reversed() action.Action { return r }

func (r *RemoveFromParent) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	return capability[Detachable](target, "be detached")
}

func (r *RemoveFromParent) OnUpdate(_ action.Target, _, _ float64, tk *action.Ticker, _ float64) error {
	action.Data[Detachable](tk).RemoveFromParent()
	return nil
}

// waitFor stands in as the reversal of absolute effects.
func waitFor(b action.Base) action.Action { return &Wait{Base: b} }
