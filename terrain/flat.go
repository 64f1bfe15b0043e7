package terrain

import (
	"context"
	"fmt"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/scene"
)

// Flat is a constant-height ground plane, mostly useful for tests and
// interior levels.
type Flat struct {
	height float32
	size   float32
	node   *scene.Node
}

func (t *Flat) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("terrain: flat: nil scope")
	}
	t.height = paramFloat(sc.Config, "height", 0)
	t.size = paramFloat(sc.Config, "size", 200)
	segments := paramInt(sc.Config, "segments", 8)

	geom, err := buildGrid(ctx, t.size, segments, t.HeightAt)
	if err != nil {
		return err
	}

	node := scene.NewNode("terrain", scene.KindMesh)
	node.Gen = sc.Root.Gen
	node.Radius = t.size / 2
	node.Geometry = geom
	node.Material = &scene.Material{Name: "terrain-ground"}
	sc.Root.AddChild(node)
	t.node = node
	return nil
}

func (t *Flat) Update(dt float64) {}

func (t *Flat) Dispose() {
	if t == nil || t.node == nil {
		return
	}
	scene.DisposeGraph(t.node, nil, nil)
	t.node = nil
}

func (t *Flat) HeightAt(x, z float32) float32 { return t.height }
