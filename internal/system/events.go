package system

import (
	"time"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/core/event"
	coresys "github.com/l1jgo/choreo/internal/core/system"
	"go.uber.org/zap"
)

// EventBridge is a scheduler observer that turns run outcomes into bus
// events, delivered to subscribers on the following frame.
type EventBridge struct {
	bus *event.Bus
}

func NewEventBridge(bus *event.Bus) *EventBridge { return &EventBridge{bus: bus} }

func (b *EventBridge) ActionFinished(target action.Target, key string, a action.Action) {
	event.Emit(b.bus, event.ActionFinished{Target: target, Key: key, Action: a})
}

func (b *EventBridge) ActionFailed(target action.Target, key string, a action.Action, err error) {
	event.Emit(b.bus, event.ActionFailed{Target: target, Key: key, Action: a, Err: err})
}

var _ action.Observer = (*EventBridge)(nil)

// EventDispatchSystem swaps the bus buffers and delivers last frame's
// events. Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// LogOutcomes subscribes log output for finished and failed runs.
func LogOutcomes(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.ActionFinished) {
		log.Info("action finished",
			zap.Stringer("target", targetOf(e.Target)),
			zap.String("key", e.Key))
	})
	event.Subscribe(bus, func(e event.ActionFailed) {
		log.Warn("action failed",
			zap.Stringer("target", targetOf(e.Target)),
			zap.String("key", e.Key),
			zap.Error(e.Err))
	})
}

type named struct{ action.Target }

func targetOf(t action.Target) named { return named{t} }

func (n named) String() string {
	if s, ok := n.Target.(interface{ Name() string }); ok {
		return s.Name()
	}
	return "<anonymous>"
}
