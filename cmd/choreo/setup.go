package main

import (
	"fmt"

	"github.com/l1jgo/choreo/internal/core/action"
	"github.com/l1jgo/choreo/internal/data"
	"github.com/l1jgo/choreo/internal/scene"
)

// populate creates one scene node per declared node, links parents, and
// starts each node's action. It returns the number of runs started.
func populate(sc *scene.Scene, sched *action.Scheduler, lib *data.Library) (int, error) {
	specs := lib.Nodes()
	nodes := make(map[string]*scene.Node, len(specs))
	for _, spec := range specs {
		n := sc.NewNode(spec.Name)
		n.SetPosition(spec.X, spec.Y)
		if spec.Texture != "" {
			n.SetTexture(spec.Texture)
		}
		if spec.Speed != nil {
			n.SetSpeed(*spec.Speed)
		}
		n.SetPaused(spec.Paused)
		nodes[spec.Name] = n
	}
	for _, spec := range specs {
		if spec.Parent == "" {
			continue
		}
		parent, ok := nodes[spec.Parent]
		if !ok {
			return 0, fmt.Errorf("node %s: unknown parent %q", spec.Name, spec.Parent)
		}
		parent.AddChild(nodes[spec.Name])
	}

	runs := 0
	for _, spec := range specs {
		if spec.Run == "" {
			continue
		}
		a, ok := lib.Get(spec.Run)
		if !ok {
			return 0, fmt.Errorf("node %s: unknown action %q", spec.Name, spec.Run)
		}
		sched.RunWithKey(nodes[spec.Name], a, spec.Key)
		runs++
	}
	return runs, nil
}
