package wayfarer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvelle/wayfarer/culling"
	"github.com/mvelle/wayfarer/scene"
)

func TestSnapshot(t *testing.T) {
	stats := &scene.Stats{}

	n := scene.NewNode("rock", scene.KindMesh)
	n.Geometry = &scene.Geometry{Positions: []float32{0, 0, 0}}
	scene.DisposeGraph(n, stats, nil)

	root := scene.NewNode("root", scene.KindGroup)
	p := scene.NewNode("prop", scene.KindMesh)
	p.Recipe = func() (*scene.Node, error) { return scene.NewNode("prop", scene.KindMesh), nil }
	root.AddChild(p)
	m := culling.NewManager(root, &scene.Camera{}, culling.Options{ScanInterval: 1}, nil, stats)
	m.Update(0.016)

	d := Snapshot(stats, m)
	assert.Equal(t, uint64(1), d.Disposal.Nodes)
	assert.Equal(t, uint64(1), d.Disposal.Geometries)
	assert.Equal(t, 1, d.Residency.Resident)
}

func TestSnapshotNilSafe(t *testing.T) {
	assert.Equal(t, Diagnostics{}, Snapshot(nil, nil))
}
