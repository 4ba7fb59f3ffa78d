package data

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/effect"
	"gopkg.in/yaml.v3"
)

// ErrNoRunner is returned when a file uses script nodes but no step runner
// was supplied.
var ErrNoRunner = errors.New("data: script node requires a step runner")

// NodeSpec describes one scene node declared in a choreography file.
type NodeSpec struct {
	Name    string   `yaml:"name"`
	Parent  string   `yaml:"parent"`
	Run     string   `yaml:"run"`
	Key     string   `yaml:"key"`
	Speed   *float64 `yaml:"speed"`
	Paused  bool     `yaml:"paused"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Texture string   `yaml:"texture"`
}

// Library holds the compiled actions of a choreography file.
type Library struct {
	actions map[string]action.Action
	nodes   []NodeSpec
}

// Get returns the action declared under name.
func (l *Library) Get(name string) (action.Action, bool) {
	a, ok := l.actions[name]
	return a, ok
}

// Names returns the declared action names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.actions))
	for name := range l.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of named actions.
func (l *Library) Count() int { return len(l.actions) }

// Nodes returns the scene nodes declared in the file, in file order.
func (l *Library) Nodes() []NodeSpec { return append([]NodeSpec(nil), l.nodes...) }

// Option configures compilation.
type Option func(*compiler)

// WithRunner sets the step runner that script nodes call into. When the
// runner can report which steps exist, unknown names fail compilation.
func WithRunner(r effect.StepRunner) Option {
	return func(c *compiler) { c.runner = r }
}

// LoadChoreography reads and compiles a choreography YAML file.
func LoadChoreography(path string, opts ...Option) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read choreography: %w", err)
	}
	lib, err := ParseChoreography(raw, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

type choreographyFile struct {
	Actions yaml.Node  `yaml:"actions"`
	Nodes   []NodeSpec `yaml:"nodes"`
}

// ParseChoreography compiles choreography YAML held in memory.
func ParseChoreography(raw []byte, opts ...Option) (*Library, error) {
	var f choreographyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse choreography: %w", err)
	}

	c := &compiler{
		decls:    make(map[string]*yaml.Node),
		order:    make([]string, 0, 16),
		compiled: make(map[string]action.Action),
		visiting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	if f.Actions.Kind != 0 {
		if f.Actions.Kind != yaml.MappingNode {
			return nil, nodeErr("actions", &f.Actions, "expected a mapping of named actions")
		}
		for i := 0; i+1 < len(f.Actions.Content); i += 2 {
			name := f.Actions.Content[i].Value
			if _, dup := c.decls[name]; dup {
				return nil, nodeErr("actions."+name, f.Actions.Content[i], "declared twice")
			}
			c.decls[name] = f.Actions.Content[i+1]
			c.order = append(c.order, name)
		}
	}
	for _, name := range c.order {
		if _, err := c.named(name, "actions."+name); err != nil {
			return nil, err
		}
	}

	lib := &Library{actions: c.compiled, nodes: f.Nodes}
	if err := lib.checkNodes(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) checkNodes() error {
	seen := make(map[string]bool, len(l.nodes))
	for i, n := range l.nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		switch {
		case n.Name == "":
			return fmt.Errorf("%s: name is required", path)
		case seen[n.Name]:
			return fmt.Errorf("%s: duplicate node %q", path, n.Name)
		case n.Speed != nil && *n.Speed < 0:
			return fmt.Errorf("%s: speed must be >= 0", path)
		}
		seen[n.Name] = true
		if n.Run != "" {
			if _, ok := l.actions[n.Run]; !ok {
				return fmt.Errorf("%s: unknown action %q", path, n.Run)
			}
		}
	}
	parents := make(map[string]string, len(l.nodes))
	for i, n := range l.nodes {
		if n.Parent != "" && !seen[n.Parent] {
			return fmt.Errorf("nodes[%d]: unknown parent %q", i, n.Parent)
		}
		parents[n.Name] = n.Parent
	}
	for i, n := range l.nodes {
		p := n.Parent
		for hops := 0; p != ""; hops++ {
			if p == n.Name || hops > len(l.nodes) {
				return fmt.Errorf("nodes[%d]: parent cycle through %q", i, n.Name)
			}
			p = parents[p]
		}
	}
	return nil
}

type compiler struct {
	runner   effect.StepRunner
	decls    map[string]*yaml.Node
	order    []string
	compiled map[string]action.Action
	visiting map[string]bool
}

func nodeErr(path string, n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s (line %d): %s", path, n.Line, fmt.Sprintf(format, args...))
}

func wrapErr(path string, n *yaml.Node, err error) error {
	return fmt.Errorf("%s (line %d): %w", path, n.Line, err)
}

// named compiles a declared action once, detecting reference cycles.
func (c *compiler) named(name, path string) (action.Action, error) {
	if a, ok := c.compiled[name]; ok {
		return a, nil
	}
	n, ok := c.decls[name]
	if !ok {
		return nil, fmt.Errorf("%s: unknown action %q", path, name)
	}
	if c.visiting[name] {
		return nil, fmt.Errorf("%s: reference cycle through %q", path, name)
	}
	c.visiting[name] = true
	defer delete(c.visiting, name)

	a, err := c.compile(n, "actions."+name)
	if err != nil {
		return nil, err
	}
	c.compiled[name] = a
	return a, nil
}

// compile turns one action node into an Action. A node is a mapping with a
// single kind key plus optional speed and timing keys, or a bare string
// naming another declared action.
func (c *compiler) compile(n *yaml.Node, path string) (action.Action, error) {
	if n.Kind == yaml.ScalarNode {
		return c.named(n.Value, path)
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(path, n, "expected an action mapping")
	}

	var (
		kind   string
		body   *yaml.Node
		tuning tuning
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "speed", "timing":
			if err := tuning.set(k.Value, v); err != nil {
				return nil, wrapErr(path+"."+k.Value, v, err)
			}
		default:
			if kind != "" {
				return nil, nodeErr(path, k, "more than one action kind (%s, %s)", kind, k.Value)
			}
			kind, body = k.Value, v
		}
	}
	if kind == "" {
		return nil, nodeErr(path, n, "missing action kind")
	}

	a, err := c.build(kind, body, path+"."+kind)
	if err != nil {
		return nil, err
	}
	return tuning.apply(a), nil
}

// tuning collects speed and timing overrides.
type tuning struct {
	speed  *float64
	timing action.TimingFunc
}

func (t *tuning) set(key string, v *yaml.Node) error {
	switch key {
	case "speed":
		var s float64
		if err := v.Decode(&s); err != nil {
			return err
		}
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("speed must be a positive number, got %v", s)
		}
		t.speed = &s
	case "timing":
		fn, ok := action.TimingByName(v.Value)
		if !ok {
			return fmt.Errorf("unknown timing %q (want one of %s)", v.Value, strings.Join(action.TimingNames(), ", "))
		}
		t.timing = fn
	}
	return nil
}

func (t tuning) apply(a action.Action) action.Action {
	if t.speed != nil {
		a = action.WithSpeed(a, *t.speed)
	}
	if t.timing != nil {
		a = action.WithTiming(a, t.timing)
	}
	return a
}

// leaf is the union of parameters leaf effects accept.
type leaf struct {
	X, Y         float64
	Angle        float64
	Alpha        float64
	Color        string
	Width        float64
	Height       float64
	Duration     float64
	Frames       []string
	FPS          float64 `yaml:"fps"`
	TimePerFrame float64 `yaml:"time_per_frame"`
	Restore      bool
	Name         string
	Action       yaml.Node
	Count        *int
	Speed        yaml.Node
	Timing       yaml.Node
}

func (c *compiler) build(kind string, body *yaml.Node, path string) (action.Action, error) {
	switch kind {
	case "sequence", "group":
		if body.Kind != yaml.SequenceNode {
			return nil, nodeErr(path, body, "expected a list of actions")
		}
		children := make([]action.Action, 0, len(body.Content))
		for i, child := range body.Content {
			a, err := c.compile(child, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, a)
		}
		if kind == "group" {
			return action.NewGroup(children...), nil
		}
		return action.NewSequence(children...), nil
	case "repeat_forever":
		inner, err := c.compile(body, path)
		if err != nil {
			return nil, err
		}
		a, err := action.NewRepeatForever(inner)
		if err != nil {
			return nil, wrapErr(path, body, err)
		}
		return a, nil
	case "reverse":
		inner, err := c.compile(body, path)
		if err != nil {
			return nil, err
		}
		return inner.Reversed(), nil
	case "ref":
		return c.named(body.Value, path)
	case "wait":
		if body.Kind == yaml.ScalarNode {
			d, err := strconv.ParseFloat(body.Value, 64)
			if err != nil {
				return nil, nodeErr(path, body, "wait expects seconds, got %q", body.Value)
			}
			return c.checked(path, body)(effect.NewWait(d))
		}
	case "remove_from_parent":
		return effect.NewRemoveFromParent(), nil
	}

	var p leaf
	if body.Kind != yaml.MappingNode {
		return nil, nodeErr(path, body, "expected parameters mapping")
	}
	if err := checkParams(kind, body, path); err != nil {
		return nil, err
	}
	if err := body.Decode(&p); err != nil {
		return nil, wrapErr(path, body, err)
	}
	a, err := c.buildLeaf(kind, &p, body, path)
	if err != nil {
		return nil, err
	}
	var t tuning
	if p.Speed.Kind != 0 {
		if err := t.set("speed", &p.Speed); err != nil {
			return nil, wrapErr(path+".speed", &p.Speed, err)
		}
	}
	if p.Timing.Kind != 0 {
		if err := t.set("timing", &p.Timing); err != nil {
			return nil, wrapErr(path+".timing", &p.Timing, err)
		}
	}
	return t.apply(a), nil
}

// leafParams lists the parameter keys each leaf kind reads. speed and
// timing are accepted everywhere.
var leafParams = map[string][]string{
	"wait":      {"duration"},
	"move_by":   {"x", "y", "duration"},
	"move_to":   {"x", "y", "duration"},
	"rotate_by": {"angle", "duration"},
	"rotate_to": {"angle", "duration"},
	"scale_by":  {"x", "y", "duration"},
	"scale_to":  {"x", "y", "duration"},
	"skew_by":   {"x", "y", "duration"},
	"fade_by":   {"alpha", "duration"},
	"fade_to":   {"alpha", "duration"},
	"fade_in":   {"duration"},
	"fade_out":  {"duration"},
	"tint_to":   {"color", "duration"},
	"resize_to": {"width", "height", "duration"},
	"animate":   {"frames", "fps", "time_per_frame", "restore"},
	"script":    {"name", "duration"},
	"repeat":    {"count", "action"},
	"on_child":  {"name", "action"},
}

// checkParams rejects keys kind does not read, so a misspelt parameter
// fails instead of silently taking its zero value. Unknown kinds are left
// to buildLeaf.
func checkParams(kind string, body *yaml.Node, path string) error {
	allowed, ok := leafParams[kind]
	if !ok {
		return nil
	}
	for i := 0; i+1 < len(body.Content); i += 2 {
		k := body.Content[i]
		if k.Value == "speed" || k.Value == "timing" || slices.Contains(allowed, k.Value) {
			continue
		}
		return nodeErr(path, k, "unknown parameter %q (want %s)", k.Value, strings.Join(allowed, ", "))
	}
	return nil
}

func (c *compiler) checked(path string, n *yaml.Node) func(action.Action, error) (action.Action, error) {
	return func(a action.Action, err error) (action.Action, error) {
		if err != nil {
			return nil, wrapErr(path, n, err)
		}
		return a, nil
	}
}

func (c *compiler) buildLeaf(kind string, p *leaf, body *yaml.Node, path string) (action.Action, error) {
	ok := c.checked(path, body)
	switch kind {
	case "wait":
		return ok(effect.NewWait(p.Duration))
	case "move_by":
		return ok(effect.NewMoveBy(p.X, p.Y, p.Duration))
	case "move_to":
		return ok(effect.NewMoveTo(p.X, p.Y, p.Duration))
	case "rotate_by":
		return ok(effect.NewRotateBy(radians(p.Angle), p.Duration))
	case "rotate_to":
		return ok(effect.NewRotateTo(radians(p.Angle), p.Duration))
	case "scale_by":
		return ok(effect.NewScaleBy(p.X, p.Y, p.Duration))
	case "scale_to":
		return ok(effect.NewScaleTo(p.X, p.Y, p.Duration))
	case "skew_by":
		return ok(effect.NewSkewBy(radians(p.X), radians(p.Y), p.Duration))
	case "fade_by":
		return ok(effect.NewFadeBy(p.Alpha, p.Duration))
	case "fade_to":
		return ok(effect.NewFadeTo(p.Alpha, p.Duration))
	case "fade_in":
		return ok(effect.NewFadeIn(p.Duration))
	case "fade_out":
		return ok(effect.NewFadeOut(p.Duration))
	case "tint_to":
		color, err := parseColor(p.Color)
		if err != nil {
			return nil, wrapErr(path+".color", body, err)
		}
		return ok(effect.NewTintTo(color, p.Duration))
	case "resize_to":
		return ok(effect.NewResizeTo(p.Width, p.Height, p.Duration))
	case "animate":
		per := p.TimePerFrame
		if p.FPS > 0 {
			per = 1 / p.FPS
		}
		if len(p.Frames) == 0 {
			return nil, nodeErr(path, body, "animate needs at least one frame")
		}
		anim, err := effect.NewAnimate(p.Frames, per)
		if err != nil {
			return nil, wrapErr(path, body, err)
		}
		if p.Restore {
			anim = anim.Restoring()
		}
		return anim, nil
	case "script":
		if c.runner == nil {
			return nil, wrapErr(path, body, ErrNoRunner)
		}
		if h, isHas := c.runner.(interface{ Has(string) bool }); isHas && !h.Has(p.Name) {
			return nil, nodeErr(path, body, "undefined step function %q", p.Name)
		}
		return ok(effect.NewScript(c.runner, p.Name, p.Duration))
	case "repeat":
		if p.Count == nil {
			return nil, nodeErr(path, body, "repeat needs a count")
		}
		if p.Action.Kind == 0 {
			return nil, nodeErr(path, body, "repeat needs an action")
		}
		inner, err := c.compile(&p.Action, path+".action")
		if err != nil {
			return nil, err
		}
		return ok(action.NewRepeat(inner, *p.Count))
	case "on_child":
		if p.Name == "" || p.Action.Kind == 0 {
			return nil, nodeErr(path, body, "on_child needs a name and an action")
		}
		inner, err := c.compile(&p.Action, path+".action")
		if err != nil {
			return nil, err
		}
		return effect.NewOnChild(p.Name, inner), nil
	}
	return nil, nodeErr(path, body, "unknown action kind %q", kind)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// parseColor accepts "#RRGGBB", "0xRRGGBB" or plain hex digits.
func parseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(h) != 6 {
		return 0, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}
