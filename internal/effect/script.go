package effect

import "github.com/l1jgo/choreo/internal/core/action"

// StepRunner executes a named, externally defined step function.
type StepRunner interface {
	RunStep(name string, target action.Target, t, dt float64) error
}

// Script calls a named step function every tick for its duration.
type Script struct {
	action.Base
	runner StepRunner
	name   string
}

func NewScript(runner StepRunner, name string, duration float64) (*Script, error) {
	b, err := action.NewBase(duration)
	if err != nil {
		return nil, err
	}
	return &Script{Base: b, runner: runner, name: name}, nil
}

func (s *Script) Name() string { return s.name }

// Reversed returns the script unchanged; scripts have no inverse.
func (s *Script) Reversed() action.Action { return s }

func (s *Script) OnUpdate(target action.Target, t, dt float64, _ *action.Ticker, _ float64) error {
	return s.runner.RunStep(s.name, target, t, dt)
}
