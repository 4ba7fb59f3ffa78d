package data

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/effect"
	"github.com/l1jgo/choreo/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct{ steps map[string]int }

func (r *fakeRunner) RunStep(name string, _ action.Target, _, _ float64) error {
	r.steps[name]++
	return nil
}

func (r *fakeRunner) Has(name string) bool { return name == "wobble" }

const sample = `
actions:
  intro:
    sequence:
      - move_by: {x: 5, duration: 5}
      - wait: 1
      - repeat:
          count: 3
          action: {rotate_by: {angle: 90, duration: 0.5, timing: ease_in_out_quad}}
      - group:
          - fade_to: {alpha: 0, duration: 1}
          - scale_to: {x: 2, y: 2, duration: 1}
      - script: {name: wobble, duration: 2}
  idle:
    repeat_forever: {animate: {frames: [a, b, c], fps: 8}}
  fast_intro:
    ref: intro
    speed: 2
  back:
    reverse: {move_by: {x: 3, y: 1, duration: 1}}
nodes:
  - name: hero
    run: intro
    key: main
  - name: sword
    parent: hero
    run: idle
    speed: 0.5
`

func TestParseChoreography(t *testing.T) {
	lib, err := ParseChoreography([]byte(sample), WithRunner(&fakeRunner{steps: map[string]int{}}))
	require.NoError(t, err)

	assert.Equal(t, []string{"back", "fast_intro", "idle", "intro"}, lib.Names())
	assert.Equal(t, 4, lib.Count())

	intro, ok := lib.Get("intro")
	require.True(t, ok)
	assert.InDelta(t, 10.5, intro.Duration(), 1e-9)

	fast, _ := lib.Get("fast_intro")
	assert.InDelta(t, 5.25, fast.ScaledDuration(), 1e-9)

	idle, _ := lib.Get("idle")
	assert.True(t, math.IsInf(idle.Duration(), 1))

	nodes := lib.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "main", nodes[0].Key)
	assert.Equal(t, "hero", nodes[1].Parent)
	require.NotNil(t, nodes[1].Speed)
	assert.Equal(t, 0.5, *nodes[1].Speed)
}

func TestCompiledActionRuns(t *testing.T) {
	runner := &fakeRunner{steps: map[string]int{}}
	lib, err := ParseChoreography([]byte(sample), WithRunner(runner))
	require.NoError(t, err)

	n := scene.New().NewNode("hero")
	intro, _ := lib.Get("intro")
	s := action.New()
	s.Run(n, intro)
	for i := 0; i < 22 && s.HasActions(n); i++ {
		s.Tick(500*time.Millisecond, func(err error) { require.NoError(t, err) })
	}
	assert.False(t, s.HasActions(n))

	x, _ := n.Position()
	assert.InDelta(t, 5, x, 1e-9)
	assert.InDelta(t, 3*math.Pi/2, n.Rotation(), 1e-9)
	assert.InDelta(t, 0, n.Alpha(), 1e-9)
	// The group's zero leftover reaches the script once before its first full step.
	assert.Equal(t, 5, runner.steps["wobble"])
}

func TestReverseNode(t *testing.T) {
	lib, err := ParseChoreography([]byte(sample), WithRunner(&fakeRunner{}))
	require.NoError(t, err)
	n := scene.New().NewNode("n")
	back, _ := lib.Get("back")

	s := action.New()
	s.Run(n, back)
	s.Tick(time.Second, nil)
	x, y := n.Position()
	assert.InDelta(t, -3, x, 1e-9)
	assert.InDelta(t, -1, y, 1e-9)
}

func TestParseChoreographyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "path names the failing element",
			src: `
actions:
  intro:
    sequence:
      - wait: 1
      - move_by: {x: 1, duration: -2}`,
			want: "actions.intro.sequence[1].move_by",
		},
		{
			name: "unknown kind",
			src:  "actions:\n  a: {teleport: {x: 1}}",
			want: `unknown action kind "teleport"`,
		},
		{
			name: "two kinds",
			src:  "actions:\n  a: {wait: 1, fade_in: {duration: 1}}",
			want: "more than one action kind",
		},
		{
			name: "unknown timing",
			src:  "actions:\n  a: {move_by: {x: 1, duration: 1, timing: wobbly}}",
			want: `unknown timing "wobbly"`,
		},
		{
			name: "bad speed",
			src:  "actions:\n  a: {wait: 1, speed: 0}",
			want: "speed must be a positive number",
		},
		{
			name: "negative repeat",
			src:  "actions:\n  a: {repeat: {count: -1, action: {wait: 1}}}",
			want: "repeat count",
		},
		{
			name: "forever over instant",
			src:  "actions:\n  a: {repeat_forever: {fade_in: {duration: 0}}}",
			want: "zero-duration",
		},
		{
			name: "reference cycle",
			src:  "actions:\n  a: {sequence: [b]}\n  b: {ref: a}",
			want: "reference cycle",
		},
		{
			name: "unknown reference",
			src:  "actions:\n  a: {sequence: [ghost]}",
			want: `unknown action "ghost"`,
		},
		{
			name: "bad color",
			src:  "actions:\n  a: {tint_to: {color: 'f00', duration: 1}}",
			want: "want 6 hex digits",
		},
		{
			name: "node runs unknown action",
			src:  "nodes:\n  - {name: hero, run: nothing}",
			want: `nodes[0]: unknown action "nothing"`,
		},
		{
			name: "node parent cycle",
			src:  "nodes:\n  - {name: a, parent: b}\n  - {name: b, parent: a}",
			want: "parent cycle",
		},
		{
			name: "misspelt parameter",
			src:  "actions:\n  a: {move_by: {x: 5, duraton: 5}}",
			want: `actions.a.move_by (line 2): unknown parameter "duraton"`,
		},
		{
			name: "parameter of another kind",
			src:  "actions:\n  a: {fade_in: {alpha: 1, duration: 1}}",
			want: `unknown parameter "alpha"`,
		},
		{
			name: "duplicate node",
			src:  "nodes:\n  - {name: a}\n  - {name: a}",
			want: `duplicate node "a"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChoreography([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScriptNeedsRunner(t *testing.T) {
	src := "actions:\n  a: {script: {name: wobble, duration: 1}}"
	_, err := ParseChoreography([]byte(src))
	assert.ErrorIs(t, err, ErrNoRunner)

	_, err = ParseChoreography([]byte("actions:\n  a: {script: {name: nope, duration: 1}}"),
		WithRunner(&fakeRunner{}))
	assert.ErrorContains(t, err, `undefined step function "nope"`)
}

func TestLeafKinds(t *testing.T) {
	src := `
actions:
  all:
    group:
      - move_to: {x: 4, y: 2, duration: 1}
      - rotate_to: {angle: 180, duration: 1}
      - scale_by: {x: 1, y: 1, duration: 1}
      - skew_by: {x: 45, duration: 1}
      - tint_to: {color: "#ff0000", duration: 1}
      - resize_to: {width: 32, height: 16, duration: 1}
      - animate: {frames: [a, b], time_per_frame: 0.5, restore: true}
      - on_child: {name: arm, action: {fade_out: {duration: 1}}}
      - {fade_by: {alpha: -0.5, duration: 1}, timing: ease_out_bounce}
`
	lib, err := ParseChoreography([]byte(src))
	require.NoError(t, err)

	sc := scene.New()
	root, arm := sc.NewNode("root"), sc.NewNode("arm")
	root.AddChild(arm)
	root.SetTexture("idle")

	all, _ := lib.Get("all")
	s := action.New()
	s.Run(root, all)
	s.Tick(2*time.Second, func(err error) { require.NoError(t, err) })
	require.False(t, s.HasActions(root))

	x, y := root.Position()
	assert.InDelta(t, 4, x, 1e-9)
	assert.InDelta(t, 2, y, 1e-9)
	assert.InDelta(t, math.Pi, root.Rotation(), 1e-9)
	sx, _ := root.Scale()
	assert.InDelta(t, 2, sx, 1e-9)
	kx, _ := root.Skew()
	assert.InDelta(t, math.Pi/4, kx, 1e-9)
	assert.Equal(t, uint32(0xFF0000), root.Tint())
	w, h := root.Size()
	assert.Equal(t, [2]float64{32, 16}, [2]float64{w, h})
	assert.Equal(t, "idle", root.Texture())
	assert.InDelta(t, 0, arm.Alpha(), 1e-9)
	assert.InDelta(t, 0.5, root.Alpha(), 1e-9)
}

func TestLoadChoreography(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actions:\n  pause: {wait: 2}\n"), 0o644))

	lib, err := LoadChoreography(path)
	require.NoError(t, err)
	a, ok := lib.Get("pause")
	require.True(t, ok)
	assert.IsType(t, &effect.Wait{}, a)

	_, err = LoadChoreography(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read choreography")
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]uint32{"#FF8000": 0xFF8000, "0x00ff00": 0x00FF00, "0000ff": 0x0000FF} {
		got, err := parseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseColor("#12345")
	assert.Error(t, err)
}
