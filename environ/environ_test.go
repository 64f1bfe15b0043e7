package environ

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

func newScope() *component.Scope {
	root := scene.NewNode("level", scene.KindGroup)
	root.Gen = 5
	return &component.Scope{Root: root}
}

func TestRegisterInstallsAllModes(t *testing.T) {
	reg := registry.New(nil)
	Register(reg)

	for _, name := range []string{
		"lighting.day", "lighting.dusk", "lighting.night",
		"effect.fireflies", "effect.waterfall", "effect.fog",
	} {
		_, ok := reg.Resolve(name)
		assert.True(t, ok, name)
	}
}

func TestLightingAttachesRig(t *testing.T) {
	sc := newScope()
	l := &Lighting{Mode: "dusk"}
	require.NoError(t, l.Init(context.Background(), sc))

	require.Len(t, sc.Root.Children(), 1)
	group := sc.Root.Children()[0]
	assert.Equal(t, "lighting.dusk", group.Name)
	assert.Equal(t, uint64(5), group.Gen)
	require.Len(t, group.Children(), 2, "sun and ambient")
	assert.Equal(t, scene.KindLight, group.Children()[0].Kind)

	l.Dispose()
	assert.True(t, group.Disposed())
	assert.Empty(t, sc.Root.Children())
}

func TestLightingModesDiffer(t *testing.T) {
	sun := func(mode string) scene.Vec3 {
		sc := newScope()
		l := &Lighting{Mode: mode}
		require.NoError(t, l.Init(context.Background(), sc))
		return sc.Root.Children()[0].Children()[0].Pos
	}
	assert.NotEqual(t, sun("day"), sun("dusk"))
	assert.NotEqual(t, sun("dusk"), sun("night"))
}

func TestLightingRejectsUnknownMode(t *testing.T) {
	l := &Lighting{Mode: "eclipse"}
	assert.Error(t, l.Init(context.Background(), newScope()))
}

func TestEffectLifecycle(t *testing.T) {
	sc := newScope()
	e := &Effect{Name: "fireflies"}
	require.NoError(t, e.Init(context.Background(), sc))

	require.Len(t, sc.Root.Children(), 1)
	node := sc.Root.Children()[0]
	assert.Equal(t, "effect.fireflies", node.Name)
	assert.Equal(t, scene.KindExternal, node.Kind, "payload belongs to the renderer")

	e.Dispose()
	assert.Empty(t, sc.Root.Children())
	e.Dispose() // second call is a no-op
}
