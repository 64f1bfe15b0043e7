// Package props places decorative objects into a level. Every prop
// node carries a re-instantiation recipe, which is what makes it
// eligible for residency management by the culling scanner.
package props

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

// TypeScatter is the system descriptor type name.
const TypeScatter = "props.scatter"

// Register installs the prop placers into reg.
func Register(reg *registry.Registry) {
	reg.Register(TypeScatter, func() component.Component { return &Scatter{} })
}

// Scatter seeds count props uniformly inside a disc, snapped to the
// terrain surface. Placement is deterministic for a given seed so a
// reloaded level looks identical.
type Scatter struct {
	group *scene.Node
}

func (s *Scatter) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("props: scatter: nil scope")
	}
	cfg := sc.Config
	count := intOr(cfg, "count", 24)
	radius := floatOr(cfg, "radius", 180)
	size := floatOr(cfg, "size", 1.5)
	seed := int64(intOr(cfg, "seed", 1))
	name, _ := cfg["prop"].(string)
	if name == "" {
		name = "rock"
	}
	if count < 0 || radius <= 0 {
		return fmt.Errorf("props: scatter: bad count/radius (%d, %f)", count, radius)
	}

	group := scene.NewNode("props."+name, scene.KindGroup)
	group.Gen = sc.Root.Gen

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("props: scatter: %w", err)
		}
		angle := rng.Float32() * 2 * math32.Pi
		dist := math32.Sqrt(rng.Float32()) * radius
		x := math32.Cos(angle) * dist
		z := math32.Sin(angle) * dist
		y := float32(0)
		if sc.HeightAt != nil {
			y = sc.HeightAt(x, z)
		}

		prop := buildProp(fmt.Sprintf("%s-%d", name, i), scene.Vec3{X: x, Y: y, Z: z}, size, group.Gen)
		group.AddChild(prop)
	}

	sc.Root.AddChild(group)
	s.group = group
	return nil
}

func (s *Scatter) Update(dt float64) {}

func (s *Scatter) Dispose() {
	if s == nil || s.group == nil {
		return
	}
	scene.DisposeGraph(s.group, nil, nil)
	s.group = nil
}

// buildProp creates one prop mesh and wires its recipe so the culling
// manager can drop and rebuild it. The recipe closes over the same
// arguments, so a rebuilt prop is identical to the original.
func buildProp(name string, pos scene.Vec3, size float32, gen uint64) *scene.Node {
	n := scene.NewNode(name, scene.KindMesh)
	n.Pos = pos
	n.Radius = size
	n.Gen = gen
	n.Geometry = boxGeometry(size)
	n.Material = &scene.Material{
		Name:     name + "-mat",
		ColorMap: &scene.Texture{Name: name + "-albedo", Data: []byte{0x80}},
	}
	n.Recipe = func() (*scene.Node, error) {
		return buildProp(name, pos, size, gen), nil
	}
	return n
}

// boxGeometry is a unit cube scaled to size; props do not warrant
// real mesh assets at this layer.
func boxGeometry(size float32) *scene.Geometry {
	h := size / 2
	return &scene.Geometry{
		Positions: []float32{
			-h, 0, -h, h, 0, -h, h, 0, h, -h, 0, h,
			-h, size, -h, h, size, -h, h, size, h, -h, size, h,
		},
		Indices: []uint32{
			0, 1, 2, 0, 2, 3,
			4, 6, 5, 4, 7, 6,
			0, 4, 5, 0, 5, 1,
			1, 5, 6, 1, 6, 2,
			2, 6, 7, 2, 7, 3,
			3, 7, 4, 3, 4, 0,
		},
	}
}

func intOr(cfg map[string]any, key string, def int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func floatOr(cfg map[string]any, key string, def float32) float32 {
	switch v := cfg[key].(type) {
	case float64:
		return float32(v)
	case int:
		return float32(v)
	default:
		return def
	}
}
