package action_test

import (
	"errors"
	"testing"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	finished []string
	failed   []error
}

func (r *recorder) ActionFinished(_ action.Target, key string, _ action.Action) {
	r.finished = append(r.finished, key)
}

func (r *recorder) ActionFailed(_ action.Target, _ string, _ action.Action, err error) {
	r.failed = append(r.failed, err)
}

func TestSchedulerKeyedReplace(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	a := newProbe("A", 10, &journal)
	b := newProbe("B", 10, &journal)

	s.RunWithKey(n, a, "move")
	s.Tick(seconds(0.1), nil)
	s.RunWithKey(n, b, "move")
	s.Tick(seconds(0.1), nil)

	assert.Equal(t, 1, s.RunningCount(n))
	assert.Same(t, b, s.Action(n, "move"))
	removedA, addedB := indexOf(journal, "A.removed"), indexOf(journal, "B.added")
	require.GreaterOrEqual(t, removedA, 0)
	assert.Less(t, removedA, addedB)
	assert.Equal(t, 1, count(journal, "A.update"))
}

func TestSchedulerAnonymousRunsCoexist(t *testing.T) {
	s := action.New()
	n := newNode("n")
	a := moveByX(1, 1)

	s.Run(n, a)
	s.Run(n, a)
	assert.Equal(t, 2, s.RunningCount(n))

	s.Tick(seconds(1), nil)
	assert.InDelta(t, 2, n.x, 1e-9)
	assert.False(t, s.HasActions(n))
}

func TestSchedulerLookupAndRemoval(t *testing.T) {
	var journal []string
	s := action.New()
	n1, n2 := newNode("n1"), newNode("n2")

	s.RunWithKey(n1, newProbe("p1", 5, &journal), "k")
	s.Run(n1, newProbe("p2", 5, &journal))
	s.Run(n2, newProbe("p3", 5, &journal))
	s.Tick(seconds(0.1), nil)

	assert.Nil(t, s.Action(n1, "missing"))
	assert.Nil(t, s.Action(n1, ""))
	assert.NotNil(t, s.Ticker(n1, "k"))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []action.Target{n1, n2}, s.Targets())

	assert.True(t, s.RemoveAction(n1, "k"))
	assert.False(t, s.RemoveAction(n1, "k"))
	assert.Equal(t, 1, count(journal, "p1.removed"))

	s.RemoveAllActions(n1)
	assert.False(t, s.HasActions(n1))
	assert.True(t, s.HasActions(n2))

	s.RemoveAll()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, count(journal, "p3.removed"))
}

func TestSchedulerPausePropagation(t *testing.T) {
	s := action.New()
	root, mid, leaf := newNode("root"), newNode("mid"), newNode("leaf")
	mid.parent = root
	leaf.parent = mid

	tk := s.Run(leaf, moveByX(4, 4))
	advance(s, 1, 0.5)
	require.InDelta(t, 1, leaf.x, 1e-9)

	root.paused = true
	advance(s, 3, 0.5)
	assert.InDelta(t, 1, leaf.x, 1e-9)
	assert.InDelta(t, 1, tk.Elapsed(), 1e-9)

	root.paused = false
	advance(s, 3, 0.5)
	assert.InDelta(t, 4, leaf.x, 1e-9)
	assert.False(t, s.HasActions(leaf))
}

func TestSchedulerSpeedPropagation(t *testing.T) {
	s := action.New()
	root, leaf := newNode("root"), newNode("leaf")
	leaf.parent = root
	root.speed = 2
	leaf.speed = 3

	speed, paused := action.Effective(leaf)
	assert.Equal(t, 6.0, speed)
	assert.False(t, paused)

	s.Run(leaf, moveByX(6, 6))
	s.Tick(seconds(0.5), nil)
	assert.InDelta(t, 3, leaf.x, 1e-9)
	s.Tick(seconds(0.5), nil)
	assert.False(t, s.HasActions(leaf))
}

func TestSchedulerSkipsNonPositiveSpeed(t *testing.T) {
	s := action.New()
	n := newNode("n")
	n.speed = 0
	s.Run(n, moveByX(1, 1))

	s.Tick(seconds(1), nil)
	assert.Equal(t, 0.0, n.x)

	n.speed = -1
	s.Tick(seconds(1), nil)
	assert.Equal(t, 0.0, n.x)
	assert.True(t, s.HasActions(n))
}

func TestSchedulerIsolatesFailures(t *testing.T) {
	var journal []string
	rec := &recorder{}
	s := action.New(action.WithObserver(rec))
	n1, n2 := newNode("n1"), newNode("n2")

	bad := newProbe("bad", 5, &journal)
	bad.updateErr = errors.New("boom")
	s.Run(n1, moveByX(1, 1))
	s.RunWithKey(n1, bad, "bad")
	s.Run(n1, moveByX(2, 1))
	s.Run(n2, moveByX(3, 1))

	var errs []error
	s.Tick(seconds(1), func(err error) { errs = append(errs, err) })

	require.Len(t, errs, 1)
	var tickErr *action.TickError
	require.ErrorAs(t, errs[0], &tickErr)
	assert.Equal(t, "bad", tickErr.Key)
	assert.Equal(t, action.Target(n1), tickErr.Target)
	assert.ErrorContains(t, errs[0], "boom")
	assert.Equal(t, 1, count(journal, "bad.removed"))

	assert.InDelta(t, 3, n1.x, 1e-9)
	assert.InDelta(t, 3, n2.x, 1e-9)
	assert.Equal(t, 0, s.Len())
	assert.Len(t, rec.failed, 1)
	assert.Len(t, rec.finished, 3)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	p := newProbe("p", 1, &journal)
	p.panicMsg = "nil sprite"
	s.Run(n, p)
	s.Run(n, moveByX(1, 1))

	var errs []error
	s.Tick(seconds(1), func(err error) { errs = append(errs, err) })

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], action.ErrPanic)
	assert.InDelta(t, 1, n.x, 1e-9)
	assert.False(t, s.HasActions(n))
}

func TestSchedulerInitFailureSkipsRemoved(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	p := newProbe("p", 1, &journal)
	p.addErr = action.ErrCapability
	s.Run(n, p)

	var errs []error
	s.Tick(seconds(0.1), func(err error) { errs = append(errs, err) })
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], action.ErrCapability)
	assert.Equal(t, []string{"p.added"}, journal)
	assert.False(t, s.HasActions(n))
}

// selfCancel removes a sibling keyed run from inside the pulse.
type selfCancel struct {
	action.Base
	s   *action.Scheduler
	key string
}

func (c *selfCancel) Reversed() action.Action { return c }

func (c *selfCancel) OnUpdate(target action.Target, _, _ float64, _ *action.Ticker, _ float64) error {
	c.s.RemoveAction(target, c.key)
	return nil
}

func TestSchedulerToleratesRemovalDuringPulse(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	s.Run(n, &selfCancel{s: s, key: "victim"})
	s.RunWithKey(n, newProbe("victim", 1, &journal), "victim")
	s.Run(n, moveByX(1, 1))

	s.Tick(seconds(1), nil)
	assert.Equal(t, 0, count(journal, "victim.added"), "victim was cancelled before its turn")
	assert.InDelta(t, 1, n.x, 1e-9)
	assert.False(t, s.HasActions(n))
}

// quitter cancels its own keyed run from its first update.
type quitter struct {
	action.Base
	s       *action.Scheduler
	key     string
	journal *[]string
}

func newQuitter(s *action.Scheduler, key string, d float64, journal *[]string) *quitter {
	return &quitter{Base: action.Must(action.NewBase(d)), s: s, key: key, journal: journal}
}

func (q *quitter) Reversed() action.Action { return q }

func (q *quitter) OnUpdate(target action.Target, _, _ float64, _ *action.Ticker, _ float64) error {
	*q.journal = append(*q.journal, "quit.update")
	q.s.RemoveAction(target, q.key)
	return nil
}

func (q *quitter) OnRemoved(action.Target, *action.Ticker) {
	*q.journal = append(*q.journal, "quit.removed")
}

func TestSchedulerRunCancelsItself(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := &recorder{}
	s := action.New(action.WithMetrics(metrics.NewScheduler(reg)), action.WithObserver(rec))
	n := newNode("n")

	var journal []string
	s.RunWithKey(n, newQuitter(s, "k", 10, &journal), "k")

	var errs []error
	s.Tick(seconds(0.1), func(err error) { errs = append(errs, err) })
	s.Tick(seconds(0.1), func(err error) { errs = append(errs, err) })

	assert.Empty(t, errs)
	assert.False(t, s.HasActions(n))
	assert.Equal(t, []string{"quit.update", "quit.removed"}, journal)
	assert.Empty(t, rec.finished, "a cancelled run is not reported as finished")
	assert.Empty(t, rec.failed)

	values := gathered(t, reg)
	assert.Equal(t, 1.0, values["choreo_actions_cancelled_total"])
	assert.Equal(t, 0.0, values["choreo_actions_finished_total"])
	assert.Equal(t, 0.0, values["choreo_actions_active"])
	assert.Equal(t, 0.0, values["choreo_targets_active"])
}

func TestSchedulerSequenceStopsWhenCancelledMidCascade(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	seq := action.NewSequence(
		newQuitter(s, "k", 0, &journal),
		moveByX(5, 0),
		newProbe("tail", 1, &journal),
	)
	s.RunWithKey(n, seq, "k")
	s.Tick(seconds(2), nil)

	assert.Equal(t, 0.0, n.x, "steps after the cancellation must not run")
	assert.False(t, s.HasActions(n))
	assert.Equal(t, []string{"quit.update", "quit.removed"}, journal)
}

func TestSchedulerGroupStopsWhenCancelled(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")

	g := action.NewGroup(newQuitter(s, "k", 1, &journal), moveByX(5, 1))
	s.RunWithKey(n, g, "k")
	s.Tick(seconds(0.5), nil)

	assert.Equal(t, 0.0, n.x)
	assert.False(t, s.HasActions(n))
	assert.Equal(t, []string{"quit.update", "quit.removed"}, journal)
}

func TestSchedulerPurgesDestroyedTargets(t *testing.T) {
	var journal []string
	s := action.New()
	n := newNode("n")
	s.Run(n, newProbe("p", 5, &journal))
	s.Tick(seconds(0.1), nil)

	n.destroyed = true
	n.paused = true
	s.Tick(seconds(0.1), nil)
	assert.False(t, s.HasActions(n))
	assert.Equal(t, 1, count(journal, "p.removed"))
}

func TestSchedulerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewScheduler(reg)
	s := action.New(action.WithMetrics(m))
	n := newNode("n")

	var journal []string
	broken := newProbe("broken", 1, &journal)
	broken.updateErr = errors.New("bad frame")

	s.Run(n, moveByX(1, 1))
	s.Run(n, broken)
	s.RunWithKey(n, moveByX(1, 5), "k")
	s.RemoveAction(n, "k")
	s.Tick(seconds(1), func(error) {})

	series, err := testutil.GatherAndCount(reg, "choreo_actions_started_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	values := gathered(t, reg)
	assert.Equal(t, 3.0, values["choreo_actions_started_total"])
	assert.Equal(t, 1.0, values["choreo_actions_finished_total"])
	assert.Equal(t, 1.0, values["choreo_actions_cancelled_total"])
	assert.Equal(t, 1.0, values["choreo_actions_failed_total"])
	assert.Equal(t, 0.0, values["choreo_actions_active"])
	assert.Equal(t, 0.0, values["choreo_targets_active"])
}

func TestDefaultSchedulerIsShared(t *testing.T) {
	assert.Same(t, action.Default(), action.Default())
	assert.NotSame(t, action.Default(), action.New())
}

// gathered flattens reg into name -> value, summing counter series.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	return values
}
