package scene

import "go.uber.org/zap"

// Stats counts released resources for the diagnostics surface. The
// counters are monotonic; Reset exists only for debug overlays. All
// mutation happens on the single update goroutine, so no
// synchronization is needed.
type Stats struct {
	Geometries uint64
	Materials  uint64
	Textures   uint64
	Nodes      uint64
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Stats {
	if s == nil {
		return Stats{}
	}
	return *s
}

// Reset zeroes the counters. Debug use only.
func (s *Stats) Reset() {
	if s == nil {
		return
	}
	*s = Stats{}
}

// DisposeGraph releases every resource reachable from n, then
// detaches n from its parent. It is idempotent: a node already
// disposed (in whole or in part) is skipped without error. Node kinds
// the disposer does not understand are logged and left alone, but
// their children are still visited.
//
// stats and log may be nil.
func DisposeGraph(n *Node, stats *Stats, log *zap.Logger) {
	if n == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	disposeNode(n, stats, log)
	n.Detach()
}

func disposeNode(n *Node, stats *Stats, log *zap.Logger) {
	if n == nil || n.disposed {
		return
	}

	// Children first so a parent never outlives its subtree.
	for _, c := range n.children {
		disposeNode(c, stats, log)
	}
	n.children = nil

	switch n.Kind {
	case KindMesh:
		releaseMesh(n, stats)
	case KindGroup, KindLight:
		// No owned GPU resources.
	case KindExternal:
		// Collaborator-owned payload; nothing to release here.
	default:
		log.Warn("dispose: unknown node kind, skipping resource release",
			zap.String("node", n.Name),
			zap.Int("kind", int(n.Kind)))
	}

	n.Recipe = nil
	n.disposed = true
	if stats != nil {
		stats.Nodes++
	}
}

func releaseMesh(n *Node, stats *Stats) {
	if n.Geometry.Release() && stats != nil {
		stats.Geometries++
	}
	if n.Material != nil {
		for _, t := range n.Material.Textures() {
			if t.Release() && stats != nil {
				stats.Textures++
			}
		}
		if n.Material.Release() && stats != nil {
			stats.Materials++
		}
	}
	n.Geometry = nil
	n.Material = nil
}
