package scene

import (
	"slices"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/core/ecs"
)

// Node is a scene entity that actions can target. Besides the scheduler's
// Target capability it exposes every shape the built-in effects need.
type Node struct {
	id       ecs.EntityID
	scene    *Scene
	name     string
	speed    float64
	paused   bool
	parent   *Node
	children []*Node
	tf       *Transform
	look     *Appearance
}

func (n *Node) ID() ecs.EntityID { return n.id }
func (n *Node) Name() string     { return n.name }
func (n *Node) String() string   { return n.name }

func (n *Node) Speed() float64     { return n.speed }
func (n *Node) SetSpeed(s float64) { n.speed = s }
func (n *Node) Paused() bool       { return n.paused }
func (n *Node) SetPaused(p bool)   { n.paused = p }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() action.Target {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) ParentNode() *Node { return n.parent }

// Destroyed reports whether the node's entity has been flushed.
func (n *Node) Destroyed() bool { return !n.scene.world.Alive(n.id) }

// Destroy queues the node and its whole subtree for destruction.
func (n *Node) Destroy() {
	n.scene.world.MarkForDestruction(n.id)
	for _, c := range n.children {
		c.Destroy()
	}
}

// AddChild reparents c under n.
func (n *Node) AddChild(c *Node) {
	c.RemoveFromParent()
	c.parent = n
	n.children = append(n.children, c)
}

// RemoveFromParent detaches n from its parent. The node stays alive.
func (n *Node) RemoveFromParent() {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ChildByName finds a direct child by name.
func (n *Node) ChildByName(name string) (action.Target, bool) {
	for _, c := range n.children {
		if c.name == name && !c.Destroyed() {
			return c, true
		}
	}
	return nil, false
}

func (n *Node) Position() (x, y float64) { return n.tf.X, n.tf.Y }
func (n *Node) SetPosition(x, y float64) { n.tf.X, n.tf.Y = x, y }
func (n *Node) Rotation() float64        { return n.tf.Rotation }
func (n *Node) SetRotation(r float64)    { n.tf.Rotation = r }
func (n *Node) Scale() (x, y float64)    { return n.tf.ScaleX, n.tf.ScaleY }
func (n *Node) SetScale(x, y float64)    { n.tf.ScaleX, n.tf.ScaleY = x, y }
func (n *Node) Skew() (x, y float64)     { return n.tf.SkewX, n.tf.SkewY }
func (n *Node) SetSkew(x, y float64)     { n.tf.SkewX, n.tf.SkewY = x, y }
func (n *Node) Alpha() float64           { return n.look.Alpha }
func (n *Node) SetAlpha(a float64)       { n.look.Alpha = a }
func (n *Node) Tint() uint32             { return n.look.Tint }
func (n *Node) SetTint(c uint32)         { n.look.Tint = c }
func (n *Node) Texture() string          { return n.look.Texture }
func (n *Node) SetTexture(name string)   { n.look.Texture = name }
func (n *Node) Size() (w, h float64)     { return n.look.Width, n.look.Height }
func (n *Node) SetSize(w, h float64)     { n.look.Width, n.look.Height = w, h }
