package action

import "slices"

// Group runs its actions side by side. Every unfinished child gets the same
// budget each tick; the group is done when all of them are.
type Group struct {
	Base
	actions []Action
}

// NewGroup returns a group whose duration is the longest scaled duration
// among actions.
func NewGroup(actions ...Action) *Group {
	var d float64
	for _, a := range actions {
		d = max(d, a.ScaledDuration())
	}
	return &Group{Base: Base{duration: d}, actions: slices.Clone(actions)}
}

// Actions returns the members of the group in declaration order.
func (g *Group) Actions() []Action { return slices.Clone(g.actions) }

func (g *Group) HasChildren() bool { return true }

func (g *Group) Reversed() Action {
	rev := make([]Action, len(g.actions))
	for i, a := range g.actions {
		rev[i] = a.Reversed()
	}
	return NewGroup(rev...)
}

func (g *Group) OnAdded(target Target, _ *Ticker) (any, error) {
	return newChildren(target, g.actions), nil
}

func (g *Group) OnUpdate(_ Target, _, _ float64, tk *Ticker, delta float64) error {
	c := Data[*children](tk)
	allDone := true
	for _, child := range c.tickers {
		if child.Done() {
			continue
		}
		if _, err := child.Tick(delta); err != nil {
			return err
		}
		if tk.Halted() {
			return nil
		}
		if !child.Done() {
			allDone = false
		}
	}
	if allDone {
		tk.MarkDone()
	}
	return nil
}

func (g *Group) OnReset(tk *Ticker) { Data[*children](tk).reset() }

func (g *Group) OnRemoved(_ Target, tk *Ticker) {
	if c := Data[*children](tk); c != nil {
		c.stop()
	}
}
