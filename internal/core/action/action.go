package action

import "math"

// Target is the minimum capability the scheduler needs from anything an
// action runs against. Speed and pause compound along the Parent chain.
type Target interface {
	Speed() float64
	Paused() bool
	Parent() Target // nil at the root
	Destroyed() bool
}

// Action is an immutable description of a timed effect. Per-run state lives
// in the Ticker, so one Action value may run on many targets at once.
//
// Durations are seconds. math.Inf(1) is allowed for unbounded repeats.
type Action interface {
	Duration() float64
	Speed() float64
	Timing() TimingFunc
	// ScaledDuration is Duration()/Speed().
	ScaledDuration() float64
	// HasChildren reports whether the action drives child tickers and
	// decides its own completion.
	HasChildren() bool
	// Reversed returns an action that undoes this one over the same
	// duration, or an equivalent no-op when no reversal exists.
	Reversed() Action

	// OnAdded runs on the first tick of a run and returns the per-run data.
	// The ticker's speed, timing and scaled duration are already snapshotted.
	OnAdded(target Target, tk *Ticker) (any, error)
	// OnUpdate runs every tick. t is the eased progress, dt its change since
	// the previous tick, delta the tick budget in the action's own time.
	OnUpdate(target Target, t, dt float64, tk *Ticker, delta float64) error
	// OnReset runs when the ticker is rewound to the start.
	OnReset(tk *Ticker)
	// OnRemoved runs once when a run ends, whatever the cause.
	OnRemoved(target Target, tk *Ticker)
}

// Base carries the duration of an action and no-op lifecycle hooks.
// Concrete actions embed it and override what they need; Reversed is
// always left to the embedding type.
type Base struct {
	duration float64
}

// NewBase validates duration and returns a Base for it.
func NewBase(duration float64) (Base, error) {
	if duration < 0 || math.IsNaN(duration) {
		return Base{}, ErrNegativeDuration
	}
	return Base{duration: duration}, nil
}

func (b Base) Duration() float64       { return b.duration }
func (Base) Speed() float64            { return 1 }
func (Base) Timing() TimingFunc        { return Linear }
func (b Base) ScaledDuration() float64 { return b.duration }
func (Base) HasChildren() bool         { return false }

func (Base) OnAdded(Target, *Ticker) (any, error)                      { return nil, nil }
func (Base) OnUpdate(Target, float64, float64, *Ticker, float64) error { return nil }
func (Base) OnReset(*Ticker)                                           {}
func (Base) OnRemoved(Target, *Ticker)                                 {}

// tuned overrides the speed and timing of an action without touching it.
type tuned struct {
	Action
	speed  float64
	timing TimingFunc
}

func tune(a Action) *tuned {
	if t, ok := a.(*tuned); ok {
		c := *t
		return &c
	}
	return &tuned{Action: a, speed: a.Speed(), timing: a.Timing()}
}

// WithSpeed returns a copy of a running at the given speed multiplier.
// Speed is not validated here; a non-positive speed simply never advances.
func WithSpeed(a Action, speed float64) Action {
	t := tune(a)
	t.speed = speed
	return t
}

// WithTiming returns a copy of a using fn as its timing function.
// A nil fn means Linear.
func WithTiming(a Action, fn TimingFunc) Action {
	if fn == nil {
		fn = Linear
	}
	t := tune(a)
	t.timing = fn
	return t
}

func (t *tuned) Speed() float64     { return t.speed }
func (t *tuned) Timing() TimingFunc { return t.timing }

func (t *tuned) ScaledDuration() float64 {
	d := t.Duration()
	if d == 0 {
		return 0
	}
	return d / t.speed
}

func (t *tuned) Reversed() Action {
	return &tuned{Action: t.Action.Reversed(), speed: t.speed, timing: t.timing}
}

// Unwrap returns the action whose speed or timing was overridden.
func (t *tuned) Unwrap() Action { return t.Action }

// Must panics if err is non-nil. It is meant for literal action trees whose
// arguments are known to be valid.
func Must[A any](a A, err error) A {
	if err != nil {
		panic(err)
	}
	return a
}
