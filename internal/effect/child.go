package effect

import (
	"fmt"

	"github.com/l1jgo/choreo/internal/core/action"
)

// OnChild runs an action on the target's direct child with the given name.
type OnChild struct {
	action.Base
	name   string
	action action.Action
}

func NewOnChild(name string, a action.Action) *OnChild {
	b := action.Must(action.NewBase(a.ScaledDuration()))
	return &OnChild{Base: b, name: name, action: a}
}

func (c *OnChild) HasChildren() bool { return true }

func (c *OnChild) Reversed() action.Action { return NewOnChild(c.name, c.action.Reversed()) }

func (c *OnChild) OnAdded(target action.Target, _ *action.Ticker) (any, error) {
	ct, err := capability[Container](target, "hold children")
	if err != nil {
		return nil, err
	}
	child, ok := ct.ChildByName(c.name)
	if !ok {
		return nil, fmt.Errorf("%w: %q under %v", action.ErrChildNotFound, c.name, target)
	}
	return action.NewTicker(child, c.action), nil
}

func (c *OnChild) OnUpdate(_ action.Target, _, _ float64, tk *action.Ticker, delta float64) error {
	child := action.Data[*action.Ticker](tk)
	if _, err := child.Tick(delta); err != nil {
		return err
	}
	if tk.Halted() {
		return nil
	}
	if child.Done() {
		tk.MarkDone()
	}
	return nil
}

func (c *OnChild) OnReset(tk *action.Ticker) { action.Data[*action.Ticker](tk).Reset() }

func (c *OnChild) OnRemoved(_ action.Target, tk *action.Ticker) {
	if child := action.Data[*action.Ticker](tk); child != nil {
		child.Stop()
	}
}
