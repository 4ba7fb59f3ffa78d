package action_test

import (
	"errors"
	"testing"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseRejectsNegativeDuration(t *testing.T) {
	_, err := action.NewBase(-1)
	assert.ErrorIs(t, err, action.ErrNegativeDuration)

	b, err := action.NewBase(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Duration())
}

func TestTickerInstantReturnsWholeDelta(t *testing.T) {
	n := newNode("n")
	tk := action.NewTicker(n, moveByX(5, 0))

	left, err := tk.Tick(0.3)
	require.NoError(t, err)
	assert.Equal(t, 0.3, left)
	assert.True(t, tk.Done())
	assert.Equal(t, 5.0, n.x)
}

func TestTickerLeftover(t *testing.T) {
	n := newNode("n")
	tk := action.NewTicker(n, moveByX(10, 1))

	left, err := tk.Tick(0.25)
	require.NoError(t, err)
	assert.Equal(t, action.StillRunning, left)
	assert.InDelta(t, 2.5, n.x, 1e-9)
	assert.InDelta(t, 0.25, tk.Progress(), 1e-9)

	left, err = tk.Tick(1.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, left, 1e-9)
	assert.True(t, tk.Done())
	assert.InDelta(t, 10, n.x, 1e-9)
}

func TestTickerEpsilonCompletion(t *testing.T) {
	n := newNode("n")
	tk := action.NewTicker(n, moveByX(1, 1))

	for i := 0; i < 10; i++ {
		_, err := tk.Tick(0.1)
		require.NoError(t, err)
	}
	assert.True(t, tk.Done(), "ten steps of 0.1 should complete a 1s action")
	assert.InDelta(t, 1, n.x, 1e-9)
}

func TestTickerSnapshotsOnFirstTick(t *testing.T) {
	n := newNode("n")
	a := action.WithSpeed(moveByX(10, 2), 2)
	tk := action.NewTicker(n, a)

	_, err := tk.Tick(0.5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, tk.Speed())
	assert.Equal(t, 1.0, tk.ScaledDuration())
	assert.InDelta(t, 5, n.x, 1e-9)

	// Reconfiguring produces a new value; the running ticker keeps its snapshot.
	faster := action.WithSpeed(a, 4)
	assert.Equal(t, 2.0, a.Speed())
	assert.Equal(t, 0.5, faster.ScaledDuration())
	_, err = tk.Tick(0.5)
	require.NoError(t, err)
	assert.True(t, tk.Done())
}

func TestTickerInitErrorSkipsRemoved(t *testing.T) {
	var journal []string
	p := newProbe("p", 1, &journal)
	p.addErr = errors.New("no sprite")

	tk := action.NewTicker(newNode("n"), p)
	_, err := tk.Tick(0.1)
	require.Error(t, err)
	tk.Stop()
	assert.Equal(t, []string{"p.added"}, journal)
}

func TestTickerDestroyedTargetCompletes(t *testing.T) {
	var journal []string
	n := newNode("n")
	tk := action.NewTicker(n, newProbe("p", 1, &journal))

	_, err := tk.Tick(0.1)
	require.NoError(t, err)
	n.destroyed = true

	left, err := tk.Tick(0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.2, left)
	assert.True(t, tk.Done())
	assert.Equal(t, 1, count(journal, "p.removed"))
}

func TestTickerStoppedRunIgnoresTicks(t *testing.T) {
	var journal []string
	tk := action.NewTicker(newNode("n"), newProbe("p", 1, &journal))

	_, err := tk.Tick(0.1)
	require.NoError(t, err)
	tk.Stop()
	assert.True(t, tk.Halted())

	left, err := tk.Tick(0.5)
	require.NoError(t, err)
	assert.Equal(t, action.StillRunning, left)
	assert.False(t, tk.Done())
	assert.Equal(t, []string{"p.added", "p.update", "p.removed"}, journal)
}

func TestTickerResetLeafRecapturesStart(t *testing.T) {
	var journal []string
	tk := action.NewTicker(newNode("n"), newProbe("p", 1, &journal))

	_, err := tk.Tick(1)
	require.NoError(t, err)
	require.True(t, tk.Done())

	tk.Reset()
	assert.False(t, tk.Done())
	assert.Equal(t, 0.0, tk.Elapsed())

	_, err = tk.Tick(0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, count(journal, "p.added"))
	assert.Equal(t, 1, count(journal, "p.removed"))
}

func TestTickerResetCompositeKeepsChildren(t *testing.T) {
	var journal []string
	seq := action.NewSequence(newProbe("a", 1, &journal), newProbe("b", 1, &journal))
	tk := action.NewTicker(newNode("n"), seq)

	_, err := tk.Tick(2)
	require.NoError(t, err)
	require.True(t, tk.Done())

	tk.Reset()
	_, err = tk.Tick(2)
	require.NoError(t, err)
	assert.True(t, tk.Done())
	assert.Equal(t, 2, count(journal, "a.added"))
	assert.Equal(t, 2, count(journal, "b.added"))
	assert.Equal(t, 1, count(journal, "a.reset"))
}

func TestDataReturnsTypedPayload(t *testing.T) {
	var journal []string
	tk := action.NewTicker(newNode("n"), newProbe("p", 1, &journal))
	_, err := tk.Tick(0.1)
	require.NoError(t, err)

	assert.Equal(t, "p", action.Data[string](tk))
	assert.Equal(t, 0, action.Data[int](tk))
}

func TestTimingFunctions(t *testing.T) {
	for _, name := range action.TimingNames() {
		fn, ok := action.TimingByName(name)
		require.True(t, ok, name)
		assert.InDelta(t, 0, fn(0), 1e-9, name)
		assert.InDelta(t, 1, fn(1), 1e-9, name)
	}

	_, ok := action.TimingByName("wobbly")
	assert.False(t, ok)

	assert.Greater(t, action.EaseOutBack(0.7), 1.0, "back easing overshoots")
	assert.InDelta(t, action.EaseOutQuad(0.3), action.Reverse(action.EaseInQuad)(0.3), 1e-12)
	assert.InDelta(t, 0.0625, action.Compose(action.EaseInQuad, action.EaseInQuad)(0.5), 1e-12)
}
