package action

import "math"

// repetition is the per-run data of Repeat and RepeatForever.
type repetition struct {
	child *Ticker
	count int
}

// Repeat runs an action a fixed number of times back to back.
//
// The repeat's own timing function is composed over the child's
// (outer(inner(x))) and applies to every iteration.
type Repeat struct {
	Base
	action Action
	count  int
}

// NewRepeat returns a repeat of a, count times.
func NewRepeat(a Action, count int) (*Repeat, error) {
	if count < 0 {
		return nil, ErrRepeatCount
	}
	var d float64
	if count > 0 {
		d = a.ScaledDuration() * float64(count)
	}
	return &Repeat{Base: Base{duration: d}, action: a, count: count}, nil
}

func (r *Repeat) Action() Action { return r.action }
func (r *Repeat) Count() int     { return r.count }

func (r *Repeat) HasChildren() bool { return true }

func (r *Repeat) Reversed() Action {
	return &Repeat{Base: r.Base, action: r.action.Reversed(), count: r.count}
}

func (r *Repeat) OnAdded(target Target, tk *Ticker) (any, error) {
	return &repetition{child: NewChildTicker(target, r.action, tk.Timing())}, nil
}

func (r *Repeat) OnUpdate(_ Target, _, _ float64, tk *Ticker, delta float64) error {
	rep := Data[*repetition](tk)
	if r.count == 0 {
		tk.MarkDone()
		return nil
	}
	remaining := delta
	for {
		left, err := rep.child.Tick(remaining)
		if err != nil {
			return err
		}
		if tk.Halted() || left < 0 {
			return nil
		}
		rep.count++
		if rep.count >= r.count {
			tk.MarkDone()
			return nil
		}
		rep.child.Reset()
		remaining = left
	}
}

func (r *Repeat) OnReset(tk *Ticker) {
	rep := Data[*repetition](tk)
	rep.count = 0
	rep.child.Reset()
}

func (r *Repeat) OnRemoved(_ Target, tk *Ticker) {
	if rep := Data[*repetition](tk); rep != nil {
		rep.child.Stop()
	}
}

// RepeatForever loops an action until it is removed from the scheduler or
// its target goes away. It never completes on its own.
type RepeatForever struct {
	Base
	action Action
}

// NewRepeatForever rejects zero-duration actions, which would loop without
// ever consuming time.
func NewRepeatForever(a Action) (*RepeatForever, error) {
	if a.ScaledDuration() == 0 {
		return nil, ErrZeroDurationForever
	}
	return &RepeatForever{Base: Base{duration: math.Inf(1)}, action: a}, nil
}

func (r *RepeatForever) Action() Action { return r.action }

func (r *RepeatForever) HasChildren() bool { return true }

func (r *RepeatForever) Reversed() Action {
	return &RepeatForever{Base: r.Base, action: r.action.Reversed()}
}

func (r *RepeatForever) OnAdded(target Target, tk *Ticker) (any, error) {
	return &repetition{child: NewChildTicker(target, r.action, tk.Timing())}, nil
}

func (r *RepeatForever) OnUpdate(_ Target, _, _ float64, tk *Ticker, delta float64) error {
	rep := Data[*repetition](tk)
	remaining := delta
	for {
		left, err := rep.child.Tick(remaining)
		if err != nil {
			return err
		}
		if tk.Halted() || left < 0 {
			return nil
		}
		if left >= remaining {
			// The child ended without consuming time, so its target is gone.
			tk.MarkDone()
			return nil
		}
		rep.count++
		rep.child.Reset()
		remaining = left
	}
}

func (r *RepeatForever) OnReset(tk *Ticker) {
	rep := Data[*repetition](tk)
	rep.count = 0
	rep.child.Reset()
}

func (r *RepeatForever) OnRemoved(_ Target, tk *Ticker) {
	if rep := Data[*repetition](tk); rep != nil {
		rep.child.Stop()
	}
}
