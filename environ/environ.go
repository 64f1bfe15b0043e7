// Package environ holds the built-in lighting and effect components.
// They attach marker nodes the renderer collaborator interprets; the
// actual light and particle math lives on the renderer side.
package environ

import (
	"context"
	"fmt"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

// Register installs the built-in lighting modes and effects.
func Register(reg *registry.Registry) {
	for _, mode := range []string{"day", "dusk", "night"} {
		mode := mode
		reg.Register("lighting."+mode, func() component.Component {
			return &Lighting{Mode: mode}
		})
	}
	for _, name := range []string{"fireflies", "waterfall", "fog"} {
		name := name
		reg.Register("effect."+name, func() component.Component {
			return &Effect{Name: name}
		})
	}
}

// Lighting attaches the light rig for one lighting mode.
type Lighting struct {
	Mode string

	group *scene.Node
}

func (l *Lighting) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("environ: lighting: nil scope")
	}
	group := scene.NewNode("lighting."+l.Mode, scene.KindGroup)
	group.Gen = sc.Root.Gen

	sun := scene.NewNode("sun", scene.KindLight)
	sun.Gen = sc.Root.Gen
	switch l.Mode {
	case "day":
		sun.Pos = scene.Vec3{X: 100, Y: 200, Z: 50}
	case "dusk":
		sun.Pos = scene.Vec3{X: 300, Y: 40, Z: 0}
	case "night":
		sun.Pos = scene.Vec3{X: -100, Y: 150, Z: -80}
	default:
		return fmt.Errorf("environ: unknown lighting mode %q", l.Mode)
	}
	group.AddChild(sun)

	ambient := scene.NewNode("ambient", scene.KindLight)
	ambient.Gen = sc.Root.Gen
	group.AddChild(ambient)

	sc.Root.AddChild(group)
	l.group = group
	return nil
}

func (l *Lighting) Update(dt float64) {}

func (l *Lighting) Dispose() {
	if l == nil || l.group == nil {
		return
	}
	scene.DisposeGraph(l.group, nil, nil)
	l.group = nil
}

// Effect marks a named ambient effect for the renderer to drive.
type Effect struct {
	Name string

	node *scene.Node
}

func (e *Effect) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("environ: effect: nil scope")
	}
	node := scene.NewNode("effect."+e.Name, scene.KindExternal)
	node.Gen = sc.Root.Gen
	sc.Root.AddChild(node)
	e.node = node
	return nil
}

func (e *Effect) Update(dt float64) {}

func (e *Effect) Dispose() {
	if e == nil || e.node == nil {
		return
	}
	scene.DisposeGraph(e.node, nil, nil)
	e.node = nil
}
