// Package component defines the contract between a level and the
// pluggable subsystems composed into it: terrain generators, lighting
// setups, interaction systems, prop placers.
package component

import (
	"context"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/scene"
)

// Scope is what a component is handed at initialization. Components
// add and remove nodes under Root and must leave no references behind
// after Dispose.
type Scope struct {
	// Root is the level-owned subtree this component may populate.
	Root *scene.Node

	// Config is the free-form configuration block from the level's
	// system descriptor.
	Config map[string]any

	// HeightAt is the terrain height query. It is nil while the
	// terrain component itself initializes and set for every
	// component initialized after it.
	HeightAt func(x, z float32) float32

	Log *zap.Logger
}

// Logger returns the scope logger, never nil.
func (s *Scope) Logger() *zap.Logger {
	if s == nil || s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Component is a runtime instance created from a system descriptor.
//
// Init may block on asynchronous work (loading a mesh, compiling a
// script) and must honor ctx cancellation. Update runs once per frame
// and must be bounded and synchronous: it must never block. Dispose
// removes everything the component attached under the scope root.
type Component interface {
	Init(ctx context.Context, sc *Scope) error
	Update(dt float64)
	Dispose()
}

// Terrain is the load-bearing capability: it produces the walkable
// ground and answers height queries. HeightAt must exactly reproduce
// the generated surface; a divergent answer spawns the player inside
// geometry or in free-fall.
type Terrain interface {
	Component
	HeightAt(x, z float32) float32
}
