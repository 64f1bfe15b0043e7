package level

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFS() fstest.MapFS {
	return fstest.MapFS{
		"island.yaml": {Data: []byte(sampleDoc)},
		"plain.yml": {Data: []byte(`
id: plain
terrain:
  type: terrain.flat
`)},
		"notes.txt": {Data: []byte("not a level")},
	}
}

func TestStoreLoad(t *testing.T) {
	s, err := NewStore(storeFS(), nil)
	require.NoError(t, err)

	cfg, err := s.Load("island")
	require.NoError(t, err)
	assert.Equal(t, "island", cfg.ID)

	cfg, err = s.Load("plain")
	require.NoError(t, err, "both .yaml and .yml are accepted")
	assert.Equal(t, "plain", cfg.ID)

	_, err = s.Load("missing")
	assert.Error(t, err)
}

func TestStoreIDs(t *testing.T) {
	s, err := NewStore(storeFS(), nil)
	require.NoError(t, err)

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"island", "plain"}, ids, "sorted, non-documents skipped")
}

func TestStoreRejectsSchemaViolations(t *testing.T) {
	docs := map[string]string{
		"unknown top-level key": `
id: bad
terrain: {type: terrain.flat}
terrian: {type: oops}
`,
		"wrong systems shape": `
id: bad
terrain: {type: terrain.flat}
systems: props.scatter
`,
		"gravity arity": `
id: bad
terrain: {type: terrain.flat}
physics: {gravity: [0, -9.81]}
`,
		"zero clearance": `
id: bad
terrain: {type: terrain.flat}
movement: {spawn: {clearance: 0}}
`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"bad.yaml": {Data: []byte(doc)}}
			s, err := NewStore(fsys, nil)
			require.NoError(t, err)
			_, err = s.Load("bad")
			assert.Error(t, err)
		})
	}
}
