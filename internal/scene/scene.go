package scene

import (
	"sort"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/core/ecs"
)

// Transform is the spatial component of a node.
type Transform struct {
	X, Y           float64
	Rotation       float64 // radians
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
}

// Appearance is the visual component of a node.
type Appearance struct {
	Alpha         float64
	Tint          uint32 // 0xRRGGBB
	Texture       string
	Width, Height float64
}

// Scene is a tree of nodes stored in an ECS world. Destroying a node only
// queues it; it becomes Destroyed once Flush runs at the end of the frame.
type Scene struct {
	world      *ecs.World
	nodes      *ecs.Store[Node]
	transforms *ecs.Store[Transform]
	looks      *ecs.Store[Appearance]
	byName     map[string]*Node
}

func New() *Scene {
	s := &Scene{
		world:      ecs.NewWorld(),
		nodes:      ecs.NewStore[Node](),
		transforms: ecs.NewStore[Transform](),
		looks:      ecs.NewStore[Appearance](),
		byName:     make(map[string]*Node, 32),
	}
	s.world.Register(s.nodes)
	s.world.Register(s.transforms)
	s.world.Register(s.looks)
	return s
}

// NewNode creates a root node with identity transform and full opacity.
func (s *Scene) NewNode(name string) *Node {
	id := s.world.CreateEntity()
	n := &Node{
		id:    id,
		scene: s,
		name:  name,
		speed: 1,
		tf:    &Transform{ScaleX: 1, ScaleY: 1},
		look:  &Appearance{Alpha: 1, Tint: 0xFFFFFF},
	}
	s.nodes.Set(id, n)
	s.transforms.Set(id, n.tf)
	s.looks.Set(id, n.look)
	if name != "" {
		s.byName[name] = n
	}
	return n
}

// Lookup returns the live node registered under name.
func (s *Scene) Lookup(name string) (*Node, bool) {
	n, ok := s.byName[name]
	if !ok || n.Destroyed() {
		return nil, false
	}
	return n, true
}

// Len returns the number of live nodes, including ones queued for destroy.
func (s *Scene) Len() int { return s.world.Len() }

// Flush destroys every node queued by Node.Destroy and returns how many
// went away.
func (s *Scene) Flush() int {
	n := s.world.FlushDestroyQueue()
	for name, node := range s.byName {
		if node.Destroyed() {
			delete(s.byName, name)
		}
	}
	return n
}

// State is a point-in-time copy of one node's components.
type State struct {
	Name string
	Transform
	Appearance
}

// Snapshot copies the components of every live node, sorted by name.
func (s *Scene) Snapshot() []State {
	out := make([]State, 0, s.transforms.Len())
	ecs.Join(s.transforms, s.looks, func(id ecs.EntityID, tf *Transform, look *Appearance) {
		name := ""
		if n, ok := s.nodes.Get(id); ok {
			name = n.name
		}
		out = append(out, State{Name: name, Transform: *tf, Appearance: *look})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var _ action.Target = (*Node)(nil)
