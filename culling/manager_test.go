package culling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelle/wayfarer/scene"
)

func testOptions() Options {
	return Options{
		RenderDistance: 10,
		FadeDistance:   15,
		UnloadDistance: 30,
		ScanInterval:   1,
		FadeRate:       20,
	}
}

// prop builds a managed mesh node at pos whose recipe reproduces it.
func prop(name string, pos scene.Vec3) *scene.Node {
	build := func() *scene.Node {
		n := scene.NewNode(name, scene.KindMesh)
		n.Pos = pos
		n.Radius = 1
		n.Geometry = &scene.Geometry{Positions: []float32{0, 0, 0}}
		return n
	}
	n := build()
	n.Recipe = func() (*scene.Node, error) { return build(), nil }
	return n
}

func TestScanDiscoversRecipeNodes(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	root.AddChild(prop("rock", scene.Vec3{X: 5}))
	root.AddChild(scene.NewNode("terrain", scene.KindMesh)) // no recipe

	cam := &scene.Camera{}
	m := NewManager(root, cam, testOptions(), nil, nil)
	m.Update(0.016)

	assert.Equal(t, Counts{Resident: 1}, m.Counts())
}

func TestUnloadBeyondThreshold(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	far := prop("rock", scene.Vec3{X: 31})
	root.AddChild(far)

	cam := &scene.Camera{}
	stats := &scene.Stats{}
	m := NewManager(root, cam, testOptions(), nil, stats)

	m.Update(0.016) // discover
	m.Update(0.016) // classify and unload

	assert.Equal(t, 1, m.Counts().Unloaded)
	assert.True(t, far.Disposed())
	assert.Empty(t, root.Children(), "unloaded node stays detached")
	assert.Equal(t, uint64(1), stats.Snapshot().Geometries)
}

func TestUnloadHysteresis(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	near := prop("rock", scene.Vec3{X: 29.5}) // just inside the unload threshold
	root.AddChild(near)

	cam := &scene.Camera{}
	m := NewManager(root, cam, testOptions(), nil, nil)
	for i := 0; i < 50; i++ {
		m.Update(0.016)
	}

	assert.Zero(t, m.Counts().Unloaded, "object short of the threshold must never unload")
	assert.Equal(t, 1, m.Counts().FadingOut)
	assert.False(t, near.Disposed())
}

func TestFadeOutReducesOpacity(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	n := prop("rock", scene.Vec3{X: 20}) // in the fade band
	root.AddChild(n)

	cam := &scene.Camera{}
	m := NewManager(root, cam, testOptions(), nil, nil)
	m.Update(0.016)
	first := n.Opacity
	m.Update(0.016)

	assert.Less(t, n.Opacity, first)
	assert.Equal(t, 1, m.Counts().FadingOut)

	for i := 0; i < 100; i++ {
		m.Update(0.016)
	}
	assert.Zero(t, n.Opacity)
	assert.False(t, n.Visible)
	assert.False(t, n.Disposed(), "faded-out objects keep their resources")
}

func TestFadeSpeedScalesWithDelta(t *testing.T) {
	opts := testOptions()
	cam := &scene.Camera{}

	run := func(dt float64) float32 {
		root := scene.NewNode("root", scene.KindGroup)
		n := prop("rock", scene.Vec3{X: 20})
		root.AddChild(n)
		m := NewManager(root, cam, opts, nil, nil)
		m.Update(dt)
		return n.Opacity
	}

	slow := run(0.008)
	fast := run(0.032)
	assert.Less(t, fast, slow, "a longer frame advances the fade further")
}

func TestReloadAfterReturn(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	root.AddChild(prop("rock", scene.Vec3{X: 40}))

	cam := &scene.Camera{}
	m := NewManager(root, cam, testOptions(), nil, nil)
	m.Update(0.016)
	m.Update(0.016)
	require.Equal(t, 1, m.Counts().Unloaded)
	require.Empty(t, root.Children())

	// Camera moves next to the object's remembered position.
	cam.Pos = scene.Vec3{X: 40}
	m.Update(0.016)

	require.Len(t, root.Children(), 1, "recipe rebuilds the node under its old parent")
	rebuilt := root.Children()[0]
	assert.Equal(t, "rock", rebuilt.Name)
	assert.False(t, rebuilt.Disposed())

	for i := 0; i < 100; i++ {
		m.Update(0.016)
	}
	assert.Equal(t, Counts{Resident: 1}, m.Counts())
	assert.Equal(t, float32(1), rebuilt.Opacity)
	assert.True(t, rebuilt.Visible)
}

func TestStaleGenerationDropsRecord(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	n := prop("rock", scene.Vec3{X: 5})
	root.AddChild(n)

	cam := &scene.Camera{}
	m := NewManager(root, cam, testOptions(), nil, nil)
	m.Update(0.016)
	require.Equal(t, 1, m.Counts().Resident)

	// A new level generation claims the node.
	n.Gen = 7
	n.Detach()
	m.Update(0.016)

	assert.Equal(t, Counts{}, m.Counts())
	assert.Equal(t, float32(1), n.Opacity, "stale nodes are never touched")
}

func TestDisposedNodeDropsRecord(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	n := prop("rock", scene.Vec3{X: 5})
	root.AddChild(n)

	m := NewManager(root, &scene.Camera{}, testOptions(), nil, nil)
	m.Update(0.016)

	scene.DisposeGraph(n, nil, nil)
	m.Update(0.016)

	assert.Equal(t, Counts{}, m.Counts())
}

func TestOutOfViewFadesWithoutUnloading(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	n := prop("rock", scene.Vec3{X: 5}) // close, but behind the camera
	root.AddChild(n)

	cam := &scene.Camera{Forward: scene.Vec3{X: -1}, FOV: 1}
	m := NewManager(root, cam, testOptions(), nil, nil)
	for i := 0; i < 50; i++ {
		m.Update(0.016)
	}

	assert.Equal(t, 1, m.Counts().FadingOut)
	assert.False(t, n.Disposed())
	assert.False(t, n.Visible)
}
