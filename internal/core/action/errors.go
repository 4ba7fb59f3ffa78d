package action

import (
	"errors"
	"fmt"
)

var (
	// Construction-time validation.
	ErrNegativeDuration    = errors.New("action: duration must be >= 0")
	ErrRepeatCount         = errors.New("action: repeat count must be a non-negative integer")
	ErrZeroDurationForever = errors.New("action: cannot repeat a zero-duration action forever")

	// ErrCapability means the target lacks a shape an effect requires.
	ErrCapability = errors.New("action: target lacks required capability")
	// ErrChildNotFound means a named child lookup failed.
	ErrChildNotFound = errors.New("action: child not found")
	// ErrPanic wraps a panic recovered from a lifecycle hook.
	ErrPanic = errors.New("action: hook panicked")
)

// TickError reports a run that failed during a pulse and was removed.
type TickError struct {
	Target Target
	Key    string
	Action Action
	Cause  string // metrics.CauseInit, CauseUpdate or CausePanic
	Err    error
}

func (e *TickError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("action %q on %v: %v", e.Key, e.Target, e.Err)
	}
	return fmt.Sprintf("action on %v: %v", e.Target, e.Err)
}

func (e *TickError) Unwrap() error { return e.Err }

// recovered converts a recovered panic value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}
