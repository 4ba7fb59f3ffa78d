package action

import (
	"errors"
	"slices"
	"time"

	"github.com/l1jgo/choreo/internal/metrics"
	"go.uber.org/zap"
)

// ErrorHandler receives a *TickError for every run removed by a failure.
type ErrorHandler func(err error)

// Observer is told about runs leaving the scheduler. Callbacks run inline
// during the pulse, after the run has been removed.
type Observer interface {
	ActionFinished(target Target, key string, a Action)
	ActionFailed(target Target, key string, a Action, err error)
}

type entry struct {
	tickers []*Ticker
}

func (e *entry) find(key string) *Ticker {
	for _, tk := range e.tickers {
		if tk.key == key {
			return tk
		}
	}
	return nil
}

// Scheduler tracks the running tickers of every target and advances them
// from one external pulse. It is single-threaded: Tick, Run and the removal
// methods must be called from the same goroutine (the frame loop).
type Scheduler struct {
	entries  map[Target]*entry
	order    []Target
	log      *zap.Logger
	metrics  *metrics.Scheduler
	observer Observer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

func WithMetrics(m *metrics.Scheduler) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// New creates an isolated scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		entries: make(map[Target]*entry, 64),
		order:   make([]Target, 0, 64),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

var defaultScheduler = New()

// Default returns the process-wide scheduler.
func Default() *Scheduler { return defaultScheduler }

// Run starts a on target as an anonymous run.
func (s *Scheduler) Run(target Target, a Action) *Ticker {
	return s.RunWithKey(target, a, "")
}

// RunWithKey starts a on target. A non-empty key names a slot: any run
// already holding that key on target is removed first, so its OnRemoved
// fires before the new run's OnAdded.
func (s *Scheduler) RunWithKey(target Target, a Action, key string) *Ticker {
	if key != "" {
		s.RemoveAction(target, key)
	}
	e, ok := s.entries[target]
	if !ok {
		e = &entry{tickers: make([]*Ticker, 0, 4)}
		s.entries[target] = e
		s.order = append(s.order, target)
		s.metrics.Targets(len(s.entries))
	}
	tk := NewTicker(target, a)
	tk.key = key
	e.tickers = append(e.tickers, tk)
	s.metrics.Started()
	return tk
}

// HasActions reports whether target has any registered run.
func (s *Scheduler) HasActions(target Target) bool {
	_, ok := s.entries[target]
	return ok
}

// RunningCount returns the number of runs registered on target.
func (s *Scheduler) RunningCount(target Target) int {
	if e, ok := s.entries[target]; ok {
		return len(e.tickers)
	}
	return 0
}

// Ticker returns the run holding key on target, or nil.
func (s *Scheduler) Ticker(target Target, key string) *Ticker {
	if key == "" {
		return nil
	}
	if e, ok := s.entries[target]; ok {
		return e.find(key)
	}
	return nil
}

// Action returns the action running under key on target, or nil.
func (s *Scheduler) Action(target Target, key string) Action {
	if tk := s.Ticker(target, key); tk != nil {
		return tk.action
	}
	return nil
}

// RemoveAction cancels the run holding key on target.
func (s *Scheduler) RemoveAction(target Target, key string) bool {
	tk := s.Ticker(target, key)
	if tk == nil {
		return false
	}
	s.cancel(target, tk)
	return true
}

// RemoveAllActions cancels every run on target.
func (s *Scheduler) RemoveAllActions(target Target) {
	e, ok := s.entries[target]
	if !ok {
		return
	}
	for _, tk := range slices.Clone(e.tickers) {
		s.cancel(target, tk)
	}
}

// RemoveAll cancels every run on every target.
func (s *Scheduler) RemoveAll() {
	for _, target := range slices.Clone(s.order) {
		s.RemoveAllActions(target)
	}
}

// Len returns the total number of registered runs.
func (s *Scheduler) Len() int {
	n := 0
	for _, e := range s.entries {
		n += len(e.tickers)
	}
	return n
}

// Targets returns the targets with registered runs in registration order.
func (s *Scheduler) Targets() []Target { return slices.Clone(s.order) }

// Effective walks target and its ancestors. Speed is the product of every
// speed on the chain; paused is true if any of them is paused.
func Effective(target Target) (speed float64, paused bool) {
	speed = 1
	for n := target; n != nil; n = n.Parent() {
		speed *= n.Speed()
		paused = paused || n.Paused()
	}
	return speed, paused
}

// Tick advances every unpaused target by dt scaled by its effective speed.
// A run whose hook fails is removed and reported to onError (or logged when
// onError is nil); other runs in the same pulse are unaffected.
func (s *Scheduler) Tick(dt time.Duration, onError ErrorHandler) {
	start := time.Now()
	delta := dt.Seconds()

	for _, target := range slices.Clone(s.order) {
		e, ok := s.entries[target]
		if !ok {
			continue
		}
		if target.Destroyed() {
			s.RemoveAllActions(target)
			continue
		}
		speed, paused := Effective(target)
		if paused || speed <= 0 {
			continue
		}
		scaled := delta * speed
		for _, tk := range slices.Clone(e.tickers) {
			if tk.destroyed {
				continue
			}
			s.step(target, tk, scaled, onError)
		}
	}

	s.metrics.Pulse(time.Since(start))
}

func (s *Scheduler) step(target Target, tk *Ticker, delta float64, onError ErrorHandler) {
	key, a := tk.key, tk.action
	wasInitialized := tk.initialized
	err := safeTick(tk, delta)
	if tk.destroyed {
		// Cancelled from inside its own hooks; cancel has already torn it down.
		if err != nil {
			s.log.Warn("cancelled action reported an error",
				zap.String("target", targetName(target)),
				zap.String("key", key),
				zap.Error(err))
		}
		return
	}
	if err == nil {
		if tk.done {
			s.detach(target, tk)
			tk.destroy()
			s.metrics.Finished()
			if s.observer != nil {
				s.observer.ActionFinished(target, key, a)
			}
		}
		return
	}

	cause := metrics.CauseUpdate
	switch {
	case errors.Is(err, ErrPanic):
		cause = metrics.CausePanic
	case !wasInitialized && !tk.initialized:
		cause = metrics.CauseInit
	}

	s.detach(target, tk)
	if stopErr := safeStop(tk); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	tk.destroy()
	s.metrics.Failed(cause)

	tickErr := &TickError{Target: target, Key: key, Action: a, Cause: cause, Err: err}
	if s.observer != nil {
		s.observer.ActionFailed(target, key, a, tickErr)
	}
	if onError != nil {
		onError(tickErr)
		return
	}
	s.log.Error("action failed",
		zap.String("target", targetName(target)),
		zap.String("key", key),
		zap.String("cause", cause),
		zap.Error(err))
}

// cancel removes a run that has not completed.
func (s *Scheduler) cancel(target Target, tk *Ticker) {
	s.detach(target, tk)
	if err := safeStop(tk); err != nil {
		s.log.Error("action teardown failed",
			zap.String("target", targetName(target)),
			zap.String("key", tk.key),
			zap.Error(err))
	}
	tk.destroy()
	s.metrics.Cancelled()
}

func (s *Scheduler) detach(target Target, tk *Ticker) {
	e, ok := s.entries[target]
	if !ok {
		return
	}
	if i := slices.Index(e.tickers, tk); i >= 0 {
		e.tickers = slices.Delete(e.tickers, i, i+1)
	}
	if len(e.tickers) > 0 {
		return
	}
	delete(s.entries, target)
	if i := slices.Index(s.order, target); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.metrics.Targets(len(s.entries))
}

func safeTick(tk *Ticker, delta float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	_, err = tk.Tick(delta)
	return err
}

func safeStop(tk *Ticker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	tk.Stop()
	return nil
}

func targetName(target Target) string {
	if n, ok := target.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "<anonymous>"
}
