// Package wayfarer exposes the engine-wide diagnostics surface. The
// individual subsystems keep their own counters; hosts pull one
// combined snapshot instead of reaching into each.
package wayfarer

import (
	"github.com/mvelle/wayfarer/culling"
	"github.com/mvelle/wayfarer/scene"
)

// Diagnostics is a point-in-time view of resource accounting.
type Diagnostics struct {
	// Disposal counts everything released since boot.
	Disposal scene.Stats
	// Residency is the managed-object census by state.
	Residency culling.Counts
}

// Snapshot collects diagnostics from the disposal counters and the
// culling manager. Either argument may be nil.
func Snapshot(stats *scene.Stats, m *culling.Manager) Diagnostics {
	var d Diagnostics
	if stats != nil {
		d.Disposal = stats.Snapshot()
	}
	d.Residency = m.Counts()
	return d
}
