// Package terrain provides the built-in terrain generator components.
// A terrain generator produces the ground mesh and the height query
// the movement collaborator samples; both must come from the same
// surface function.
package terrain

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

// Component type names resolved from level documents.
const (
	TypeIsland = "terrain.island"
	TypeFlat   = "terrain.flat"
)

// Register installs the built-in generators into reg.
func Register(reg *registry.Registry) {
	reg.Register(TypeIsland, func() component.Component { return &Island{} })
	reg.Register(TypeFlat, func() component.Component { return &Flat{} })
}

type islandParams struct {
	hillHeight   float32
	hillRadius   float32
	islandRadius float32
	baseLevel    float32
	totalSize    float32
	segments     int
	noise        bool
}

func islandParamsFrom(cfg map[string]any) islandParams {
	return islandParams{
		hillHeight:   paramFloat(cfg, "hill_height", 15),
		hillRadius:   paramFloat(cfg, "hill_radius", 100),
		islandRadius: paramFloat(cfg, "island_radius", 220),
		baseLevel:    paramFloat(cfg, "base_level", -5),
		totalSize:    paramFloat(cfg, "total_size", 500),
		segments:     paramInt(cfg, "segments", 64),
		noise:        paramBool(cfg, "noise", true),
	}
}

// Island generates a floating-island ground mesh: a cosine-squared
// central hill on a flat apron, dropping into the void past the
// island radius, with layered trigonometric surface noise.
type Island struct {
	params islandParams
	node   *scene.Node
}

func (t *Island) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("terrain: island: nil scope")
	}
	t.params = islandParamsFrom(sc.Config)
	if t.params.segments < 2 {
		return fmt.Errorf("terrain: island: segments must be >= 2, got %d", t.params.segments)
	}
	if t.params.hillRadius <= 0 || t.params.islandRadius <= 0 {
		return fmt.Errorf("terrain: island: radii must be positive")
	}

	geom, err := buildGrid(ctx, t.params.totalSize, t.params.segments, t.HeightAt)
	if err != nil {
		return err
	}

	node := scene.NewNode("terrain", scene.KindMesh)
	node.Gen = sc.Root.Gen
	node.Radius = t.params.totalSize / 2
	node.Geometry = geom
	node.Material = &scene.Material{Name: "terrain-ground"}
	sc.Root.AddChild(node)
	t.node = node
	return nil
}

func (t *Island) Update(dt float64) {}

func (t *Island) Dispose() {
	if t == nil || t.node == nil {
		return
	}
	scene.DisposeGraph(t.node, nil, nil)
	t.node = nil
}

// HeightAt returns the surface height at (x, z). This is the same
// function the mesh vertices are sampled from.
func (t *Island) HeightAt(x, z float32) float32 {
	p := t.params
	d := math32.Sqrt(x*x + z*z)

	h := p.baseLevel
	if d < p.hillRadius {
		m := math32.Cos((d / p.hillRadius) * math32.Pi * 0.5)
		h = p.baseLevel + p.hillHeight*m*m
	}
	if d >= p.islandRadius {
		void := (d - p.islandRadius) * 0.1
		h = p.baseLevel - void*void
	}
	if p.noise {
		h += surfaceNoise(x, z)
	}
	return h
}

// noiseOctave constants reproduce the original surface detail; the
// rotations break grid alignment between octaves.
type noiseOctave struct {
	freq   float32
	amp    float32
	angleX float32
	angleZ float32
	phaseX float32
	phaseZ float32
}

var noiseOctaves = []noiseOctave{
	{0.08, 0.25, math32.Pi / 7.3, math32.Pi / 3.7, 2.1, 5.8},
	{0.15, 0.15, math32.Pi / 2.8, math32.Pi / 5.2, 1.7, 3.4},
	{0.32, 0.08, math32.Pi / 4.1, math32.Pi / 6.9, 4.2, 1.9},
	{0.67, 0.04, math32.Pi / 1.9, math32.Pi / 8.3, 0.9, 6.1},
	{1.23, 0.02, math32.Pi / 3.4, math32.Pi / 2.1, 3.8, 2.7},
}

func surfaceNoise(x, z float32) float32 {
	var noise float32
	for _, o := range noiseOctaves {
		x1 := x*math32.Cos(o.angleX) - z*math32.Sin(o.angleX)
		z1 := x*math32.Sin(o.angleZ) + z*math32.Cos(o.angleZ)
		noise += math32.Sin((x1+o.phaseX)*o.freq) * math32.Cos((z1+o.phaseZ)*o.freq) * o.amp
	}
	return noise
}
