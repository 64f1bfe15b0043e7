package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelle/wayfarer/component"
)

type nopComponent struct{}

func (nopComponent) Init(context.Context, *component.Scope) error { return nil }
func (nopComponent) Update(float64)                               {}
func (nopComponent) Dispose()                                     {}

func nopFactory() component.Component { return nopComponent{} }

func TestRegisterResolve(t *testing.T) {
	r := New(nil)
	r.Register("terrain.flat", nopFactory)

	f, ok := r.Resolve("terrain.flat")
	require.True(t, ok)
	assert.NotNil(t, f())

	_, ok = r.Resolve("nope")
	assert.False(t, ok)
}

func TestReRegistrationOverwrites(t *testing.T) {
	r := New(nil)
	first := 0
	second := 0
	r.Register("x", func() component.Component { first++; return nopComponent{} })
	r.Register("x", func() component.Component { second++; return nopComponent{} })

	f, ok := r.Resolve("x")
	require.True(t, ok)
	f()
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestLazyPopulation(t *testing.T) {
	r := New(nil)
	ran := false
	r.OnPopulate(func(r *Registry) {
		ran = true
		r.Register("late", nopFactory)
	})
	assert.False(t, r.Populated(), "populate passes must not run until first lookup")

	_, ok := r.Resolve("late")
	assert.True(t, ok)
	assert.True(t, ran)
	assert.True(t, r.Populated())

	// Passes queued after population run immediately.
	r.OnPopulate(func(r *Registry) { r.Register("later", nopFactory) })
	_, ok = r.Resolve("later")
	assert.True(t, ok)
}

func TestMissingReportsAll(t *testing.T) {
	r := New(nil)
	r.Register("a", nopFactory)

	cases := []struct {
		name  string
		names []string
		want  []string
	}{
		{"all_present", []string{"a"}, nil},
		{"one_missing", []string{"a", "b"}, []string{"b"}},
		{"all_missing_sorted", []string{"z", "b", "m"}, []string{"b", "m", "z"}},
		{"dupes_and_blanks", []string{"b", "", "b", "a"}, []string{"b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, r.Missing(c.names))
		})
	}
}

func TestTypes(t *testing.T) {
	r := New(nil)
	r.Register("b", nopFactory)
	r.Register("a", nopFactory)
	assert.Equal(t, []string{"a", "b"}, r.Types())
}
