package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelle/wayfarer/level"
)

// Every shipped document must load through the validating store.
func TestEmbeddedDocumentsAreValid(t *testing.T) {
	store, err := level.NewStore(FS, nil)
	require.NoError(t, err)

	ids, err := store.IDs()
	require.NoError(t, err)
	require.Contains(t, ids, "observatory")
	require.Contains(t, ids, "flatlands")
	require.Contains(t, ids, "grove")

	for _, id := range ids {
		cfg, err := store.Load(id)
		require.NoError(t, err, "level %q", id)
		assert.Equal(t, id, cfg.ID)
		assert.NotEmpty(t, cfg.Terrain.Type)
	}
}

func TestObservatoryDocument(t *testing.T) {
	store, err := level.NewStore(FS, nil)
	require.NoError(t, err)

	cfg, err := store.Load("observatory")
	require.NoError(t, err)

	assert.Equal(t, "terrain.island", cfg.Terrain.Type)
	assert.Equal(t, "dusk", cfg.Environment.Lighting)
	assert.Equal(t, []string{"fireflies", "waterfall"}, cfg.Environment.Effects)
	assert.True(t, cfg.Movement.TerrainFollow)
	assert.Equal(t, float32(50), cfg.Movement.Spawn.Z)
	assert.Equal(t, float32(level.DefaultSpawnClearance), cfg.Movement.Spawn.Clearance)
	require.Len(t, cfg.Systems, 3)
	assert.Equal(t, "script", cfg.Systems[2].Type)
}
