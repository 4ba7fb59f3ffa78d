package action_test

import (
	"fmt"
	"time"

	"github.com/l1jgo/choreo/internal/core/action"
)

type node struct {
	name      string
	x         float64
	speed     float64
	paused    bool
	parent    *node
	destroyed bool
}

func newNode(name string) *node { return &node{name: name, speed: 1} }

func (n *node) Speed() float64  { return n.speed }
func (n *node) Paused() bool    { return n.paused }
func (n *node) Destroyed() bool { return n.destroyed }
func (n *node) Name() string    { return n.name }

func (n *node) Parent() action.Target {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// moveX shifts node.x by dx over its duration, applying eased increments.
type moveX struct {
	action.Base
	dx float64
}

func moveByX(dx, d float64) *moveX {
	return &moveX{Base: action.Must(action.NewBase(d)), dx: dx}
}

func (m *moveX) Reversed() action.Action { return moveByX(-m.dx, m.Duration()) }

func (m *moveX) OnUpdate(target action.Target, _, dt float64, _ *action.Ticker, _ float64) error {
	target.(*node).x += m.dx * dt
	return nil
}

type waitAction struct{ action.Base }

func wait(d float64) *waitAction { return &waitAction{Base: action.Must(action.NewBase(d))} }

func (w *waitAction) Reversed() action.Action { return w }

// probe records every lifecycle hook into a shared journal.
type probe struct {
	action.Base
	name      string
	journal   *[]string
	addErr    error
	updateErr error
	panicMsg  string
	ts        []float64
}

func newProbe(name string, d float64, journal *[]string) *probe {
	return &probe{Base: action.Must(action.NewBase(d)), name: name, journal: journal}
}

func (p *probe) Reversed() action.Action { return p }

func (p *probe) OnAdded(action.Target, *action.Ticker) (any, error) {
	*p.journal = append(*p.journal, p.name+".added")
	if p.addErr != nil {
		return nil, p.addErr
	}
	return p.name, nil
}

func (p *probe) OnUpdate(_ action.Target, t, _ float64, _ *action.Ticker, _ float64) error {
	*p.journal = append(*p.journal, p.name+".update")
	p.ts = append(p.ts, t)
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	return p.updateErr
}

func (p *probe) OnReset(*action.Ticker) {
	*p.journal = append(*p.journal, p.name+".reset")
}

func (p *probe) OnRemoved(action.Target, *action.Ticker) {
	*p.journal = append(*p.journal, p.name+".removed")
}

func count(journal []string, entry string) int {
	n := 0
	for _, e := range journal {
		if e == entry {
			n++
		}
	}
	return n
}

func indexOf(journal []string, entry string) int {
	for i, e := range journal {
		if e == entry {
			return i
		}
	}
	return -1
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// advance pulses s for total seconds in equal steps.
func advance(s *action.Scheduler, total, step float64) {
	n := int(total/step + 0.5)
	for i := 0; i < n; i++ {
		s.Tick(seconds(step), func(err error) { panic(fmt.Sprintf("unexpected tick error: %v", err)) })
	}
}
