package event

import "github.com/l1jgo/choreo/internal/core/action"

// ActionFinished is emitted when a run completes on its own.
type ActionFinished struct {
	Target action.Target
	Key    string
	Action action.Action
}

// ActionFailed is emitted when a run is removed because a hook failed.
type ActionFailed struct {
	Target action.Target
	Key    string
	Action action.Action
	Err    error
}
