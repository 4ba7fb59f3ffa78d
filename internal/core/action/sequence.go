package action

import "slices"

// children is the per-run data of Sequence and Group.
type children struct {
	tickers []*Ticker
}

func newChildren(target Target, actions []Action) *children {
	c := &children{tickers: make([]*Ticker, len(actions))}
	for i, a := range actions {
		c.tickers[i] = NewTicker(target, a)
	}
	return c
}

func (c *children) reset() {
	for _, child := range c.tickers {
		child.Reset()
	}
}

func (c *children) stop() {
	for _, child := range c.tickers {
		child.Stop()
	}
}

// Sequence runs its actions one after another. Time left over by a finished
// step flows into the next step within the same tick.
type Sequence struct {
	Base
	actions []Action
}

// NewSequence returns a sequence whose duration is the sum of the scaled
// durations of actions.
func NewSequence(actions ...Action) *Sequence {
	var d float64
	for _, a := range actions {
		d += a.ScaledDuration()
	}
	return &Sequence{Base: Base{duration: d}, actions: slices.Clone(actions)}
}

// Actions returns the steps of the sequence in order.
func (s *Sequence) Actions() []Action { return slices.Clone(s.actions) }

func (s *Sequence) HasChildren() bool { return true }

func (s *Sequence) Reversed() Action {
	rev := make([]Action, len(s.actions))
	for i, a := range s.actions {
		rev[len(s.actions)-1-i] = a.Reversed()
	}
	return NewSequence(rev...)
}

func (s *Sequence) OnAdded(target Target, _ *Ticker) (any, error) {
	return newChildren(target, s.actions), nil
}

func (s *Sequence) OnUpdate(_ Target, _, _ float64, tk *Ticker, delta float64) error {
	c := Data[*children](tk)
	remaining := delta
	for _, child := range c.tickers {
		if child.Done() {
			continue
		}
		left, err := child.Tick(remaining)
		if err != nil {
			return err
		}
		if tk.Halted() || left < 0 {
			return nil
		}
		remaining = left
	}
	tk.MarkDone()
	return nil
}

func (s *Sequence) OnReset(tk *Ticker) { Data[*children](tk).reset() }

func (s *Sequence) OnRemoved(_ Target, tk *Ticker) {
	if c := Data[*children](tk); c != nil {
		c.stop()
	}
}
