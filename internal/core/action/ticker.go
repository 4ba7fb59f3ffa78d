package action

import "math"

// StillRunning is the leftover reported by Tick while a run is in progress.
const StillRunning = -1.0

// completionEpsilon absorbs floating-point residue in the progress ratio.
const completionEpsilon = 1e-9

// Ticker executes one run of an action against one target. It holds all
// per-run state: elapsed time, the speed/timing/duration snapshot taken on
// the first tick, and the data returned by OnAdded.
//
// A Ticker is not safe for concurrent use.
type Ticker struct {
	target Target
	action Action
	key    string

	elapsed        float64
	speed          float64
	timing         TimingFunc
	scaledDuration float64
	outerTiming    TimingFunc

	data         any
	initialized  bool
	live         bool // OnAdded succeeded and OnRemoved has not run yet
	done         bool
	autoComplete bool
	destroyed    bool
}

// NewTicker creates an uninitialized run of a against target. Composite
// actions use it for their children; top-level runs go through Scheduler.Run.
func NewTicker(target Target, a Action) *Ticker {
	return &Ticker{target: target, action: a}
}

// NewChildTicker is NewTicker with outer composed over the child's own
// timing function.
func NewChildTicker(target Target, a Action, outer TimingFunc) *Ticker {
	tk := NewTicker(target, a)
	tk.outerTiming = outer
	return tk
}

func (tk *Ticker) Target() Target { return tk.target }
func (tk *Ticker) Action() Action { return tk.action }
func (tk *Ticker) Key() string    { return tk.key }
func (tk *Ticker) Data() any      { return tk.data }
func (tk *Ticker) Done() bool     { return tk.done }

// Elapsed is the time consumed by the current run, in the caller's time.
func (tk *Ticker) Elapsed() float64 { return tk.elapsed }

// Speed is the speed snapshot of the current run.
func (tk *Ticker) Speed() float64 { return tk.speed }

// Timing is the timing snapshot of the current run.
func (tk *Ticker) Timing() TimingFunc { return tk.timing }

// ScaledDuration is the duration snapshot of the current run.
func (tk *Ticker) ScaledDuration() float64 { return tk.scaledDuration }

// Progress is the un-eased completion ratio in [0,1].
func (tk *Ticker) Progress() float64 {
	if tk.done {
		return 1
	}
	if !tk.initialized || tk.scaledDuration == 0 {
		return 0
	}
	return clamp01(tk.elapsed / tk.scaledDuration)
}

// MarkDone completes the run on the current tick. Composite actions call it
// from OnUpdate because their completion does not follow elapsed time.
func (tk *Ticker) MarkDone() { tk.done = true }

// Data returns the per-run payload of tk as D, or D's zero value.
func Data[D any](tk *Ticker) D {
	d, _ := tk.data.(D)
	return d
}

// Tick advances the run by delta seconds of caller time. It returns the
// unused part of delta once the run completes, or StillRunning.
//
// An error from OnAdded aborts the run without calling OnRemoved. Errors
// from OnUpdate leave the run live; the owner is expected to Stop it.
//
// A run stopped from inside its own hooks does nothing more: Tick returns
// StillRunning and the owner sees it as consumed.
func (tk *Ticker) Tick(delta float64) (float64, error) {
	if tk.destroyed {
		return delta, nil
	}
	if tk.initialized && !tk.live {
		if tk.done {
			return delta, nil
		}
		return StillRunning, nil
	}
	if !tk.initialized {
		if err := tk.init(); err != nil {
			return 0, err
		}
		if tk.destroyed {
			return StillRunning, nil
		}
	}
	if tk.target == nil || tk.target.Destroyed() {
		tk.done = true
		tk.Stop()
		return delta, nil
	}

	scaled := delta * tk.speed

	if tk.scaledDuration == 0 {
		if err := tk.action.OnUpdate(tk.target, 1, 1, tk, scaled); err != nil {
			return 0, err
		}
		if tk.Halted() {
			return StillRunning, nil
		}
		tk.done = true
		tk.Stop()
		return delta, nil
	}

	t0 := tk.timing(clamp01(tk.elapsed / tk.scaledDuration))
	tk.elapsed += delta
	progress := clamp01(tk.elapsed / tk.scaledDuration)
	t1 := tk.timing(progress)
	if err := tk.action.OnUpdate(tk.target, t1, t1-t0, tk, scaled); err != nil {
		return 0, err
	}
	if tk.Halted() {
		return StillRunning, nil
	}

	if tk.autoComplete && 1-progress < completionEpsilon {
		tk.done = true
	}
	if !tk.done {
		return StillRunning, nil
	}
	tk.Stop()
	return math.Max(tk.elapsed-tk.scaledDuration, 0), nil
}

func (tk *Ticker) init() error {
	tk.speed = tk.action.Speed()
	tk.timing = tk.action.Timing()
	if tk.timing == nil {
		tk.timing = Linear
	}
	if tk.outerTiming != nil {
		tk.timing = Compose(tk.outerTiming, tk.timing)
	}
	tk.scaledDuration = tk.action.ScaledDuration()
	tk.autoComplete = !tk.action.HasChildren()

	data, err := tk.action.OnAdded(tk.target, tk)
	if err != nil {
		tk.data = nil
		return err
	}
	if tk.destroyed {
		return nil
	}
	tk.data = data
	tk.initialized = true
	tk.live = true
	return nil
}

// Reset rewinds the run to its start. A leaf re-runs OnAdded on its next
// tick so start values are captured again; a composite keeps its children
// and resets them through OnReset.
func (tk *Ticker) Reset() {
	if tk.destroyed {
		return
	}
	tk.elapsed = 0
	tk.done = false
	if !tk.initialized {
		return
	}
	if tk.action.HasChildren() {
		tk.live = true
		tk.action.OnReset(tk)
		return
	}
	tk.Stop()
	tk.action.OnReset(tk)
	tk.initialized = false
}

// Halted reports whether the run was stopped or destroyed while it was
// being ticked. Composites check it after every child tick and return
// without touching the remaining children.
func (tk *Ticker) Halted() bool { return tk.destroyed || !tk.live }

// Stop ends the current run, calling OnRemoved if it has not run yet for
// this run. The ticker can still be Reset afterwards.
func (tk *Ticker) Stop() {
	if !tk.live {
		return
	}
	tk.live = false
	tk.action.OnRemoved(tk.target, tk)
}

// destroy drops every reference the ticker holds. It is idempotent.
func (tk *Ticker) destroy() {
	tk.destroyed = true
	tk.done = true
	tk.target = nil
	tk.action = nil
	tk.data = nil
	tk.timing = nil
	tk.outerTiming = nil
}
