// Package culling keeps the live scene inside the rendering budget.
// A periodic scanner classifies managed objects by camera distance
// and view-cone membership, fades them smoothly instead of toggling
// visibility, and releases the resources of objects far enough away
// to not matter. Unloaded objects are rebuilt from their recipes when
// they come back into range.
package culling

import (
	"math"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/scene"
)

// Residency is the lifecycle of a managed object's resources.
type Residency int

const (
	Resident Residency = iota
	FadingOut
	Unloaded
	FadingIn
)

func (r Residency) String() string {
	switch r {
	case Resident:
		return "resident"
	case FadingOut:
		return "fading_out"
	case Unloaded:
		return "unloaded"
	case FadingIn:
		return "fading_in"
	default:
		return "invalid"
	}
}

// Options are the distance thresholds and fade tuning. The gap
// between RenderDistance and FadeDistance keeps an object hovering on
// one boundary from flickering between states.
type Options struct {
	// RenderDistance: closer than this (and in view) an object fades
	// back in and becomes Resident.
	RenderDistance float32
	// FadeDistance: beyond this an object fades out. Must be at
	// least RenderDistance.
	FadeDistance float32
	// UnloadDistance: beyond this an object's resources are released
	// entirely. Must be at least FadeDistance.
	UnloadDistance float32

	// ScanInterval is how many Update calls pass between scans.
	// Fades still advance every call. Zero means 10.
	ScanInterval int

	// FadeRate is the exponential smoothing rate per second toward
	// the opacity target. Zero means 5.
	FadeRate float64
}

func (o Options) withDefaults() Options {
	if o.RenderDistance <= 0 {
		o.RenderDistance = 100
	}
	if o.FadeDistance < o.RenderDistance {
		o.FadeDistance = o.RenderDistance * 1.2
	}
	if o.UnloadDistance < o.FadeDistance {
		o.UnloadDistance = o.FadeDistance * 1.5
	}
	if o.ScanInterval <= 0 {
		o.ScanInterval = 10
	}
	if o.FadeRate <= 0 {
		o.FadeRate = 5
	}
	return o
}

// Counts is the per-state object census for the diagnostics surface.
type Counts struct {
	Resident  int
	FadingOut int
	Unloaded  int
	FadingIn  int
}

// managed wraps one tracked node with everything needed to fade it
// and to rebuild it after unloading.
type managed struct {
	node   *scene.Node
	parent *scene.Node
	recipe scene.Recipe
	gen    uint64

	name     string
	pos      scene.Vec3 // world position, kept valid while Unloaded
	radius   float32
	distance float32
	opacity  float64
	state    Residency
}

// Manager scans the subtree under root for nodes carrying a recipe
// and drives their residency. Gameplay code never talks to it;
// classification comes only from distance and view sampling.
type Manager struct {
	root  *scene.Node
	cam   *scene.Camera
	opts  Options
	log   *zap.Logger
	stats *scene.Stats

	objects []*managed
	frame   int
}

// NewManager creates a scanner over root using cam. log and stats may
// be nil.
func NewManager(root *scene.Node, cam *scene.Camera, opts Options, log *zap.Logger, stats *scene.Stats) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		root:  root,
		cam:   cam,
		opts:  opts.withDefaults(),
		log:   log,
		stats: stats,
	}
}

// Update advances fades every call and runs a discovery/classify scan
// every ScanInterval calls. dt is the frame delta in seconds.
func (m *Manager) Update(dt float64) {
	if m == nil {
		return
	}
	m.frame++
	if m.frame%m.opts.ScanInterval == 0 {
		m.scan()
	}
	m.advanceFades(dt)
}

// Counts returns the per-state census.
func (m *Manager) Counts() Counts {
	var c Counts
	if m == nil {
		return c
	}
	for _, obj := range m.objects {
		switch obj.state {
		case Resident:
			c.Resident++
		case FadingOut:
			c.FadingOut++
		case Unloaded:
			c.Unloaded++
		case FadingIn:
			c.FadingIn++
		}
	}
	return c
}

// scan discovers new managed nodes, drops stale records, and
// classifies every object against the thresholds.
func (m *Manager) scan() {
	m.discover()

	keep := m.objects[:0]
	for _, obj := range m.objects {
		if m.stale(obj) {
			continue
		}
		m.classify(obj)
		keep = append(keep, obj)
	}
	m.objects = keep
}

// discover picks up nodes carrying a recipe that are not yet tracked.
func (m *Manager) discover() {
	tracked := make(map[*scene.Node]bool, len(m.objects))
	for _, obj := range m.objects {
		if obj.node != nil {
			tracked[obj.node] = true
		}
	}
	m.root.Walk(func(n *scene.Node) bool {
		if n.Disposed() {
			return false
		}
		if n.Recipe == nil || tracked[n] {
			return true
		}
		m.objects = append(m.objects, &managed{
			node:    n,
			parent:  n.Parent(),
			recipe:  n.Recipe,
			gen:     n.Gen,
			name:    n.Name,
			pos:     n.WorldPos(),
			radius:  n.Radius,
			opacity: float64(n.Opacity),
			state:   Resident,
		})
		return true
	})
}

// stale reports whether the owning level has moved on without us: the
// node was disposed externally or its generation stamp changed. Such
// records are dropped untouched; the scanner never mutates a node
// mid-disposal.
func (m *Manager) stale(obj *managed) bool {
	if obj.state == Unloaded {
		// We hold no node; the parent decides whether reattachment
		// is still possible.
		return obj.parent == nil || obj.parent.Disposed()
	}
	return obj.node == nil || obj.node.Disposed() || obj.node.Gen != obj.gen
}

func (m *Manager) classify(obj *managed) {
	pos := obj.pos
	if obj.state != Unloaded && obj.node != nil {
		pos = obj.node.WorldPos()
		obj.pos = pos
	}
	dist := m.cam.Pos.Dist(pos)
	obj.distance = dist
	inView := m.cam.Sees(pos, obj.radius)

	switch obj.state {
	case Unloaded:
		if dist < m.opts.RenderDistance && inView {
			m.reload(obj)
		}
	case Resident, FadingIn:
		if dist >= m.opts.UnloadDistance {
			m.unload(obj)
		} else if dist >= m.opts.FadeDistance || !inView {
			obj.state = FadingOut
		}
	case FadingOut:
		if dist >= m.opts.UnloadDistance {
			m.unload(obj)
		} else if dist < m.opts.RenderDistance && inView {
			obj.state = FadingIn
		}
	}
}

// unload releases the node's resources entirely; the record keeps the
// recipe and last position for a later rebuild.
func (m *Manager) unload(obj *managed) {
	if obj.node != nil {
		scene.DisposeGraph(obj.node, m.stats, m.log)
		obj.node = nil
	}
	obj.opacity = 0
	obj.state = Unloaded
}

// reload rebuilds the node from its recipe and fades it back in.
func (m *Manager) reload(obj *managed) {
	node, err := obj.recipe()
	if err != nil {
		m.log.Warn("culling: rebuild failed, dropping object",
			zap.String("object", obj.name), zap.Error(err))
		obj.recipe = nil
		obj.parent = nil // record is dropped on the next scan
		return
	}
	node.Gen = obj.gen
	node.Opacity = 0
	node.Visible = false
	obj.parent.AddChild(node)
	obj.node = node
	obj.opacity = 0
	obj.state = FadingIn
}

const opacitySnap = 0.01

// advanceFades moves opacity toward its target with exponential
// smoothing scaled by elapsed time, so fade speed does not depend on
// frame rate.
func (m *Manager) advanceFades(dt float64) {
	if dt <= 0 {
		return
	}
	blend := 1 - math.Exp(-m.opts.FadeRate*dt)
	for _, obj := range m.objects {
		if obj.node == nil || obj.node.Disposed() || obj.node.Gen != obj.gen {
			continue
		}
		var target float64
		switch obj.state {
		case FadingIn, Resident:
			target = 1
		case FadingOut:
			target = 0
		default:
			continue
		}

		obj.opacity += (target - obj.opacity) * blend
		if target == 1 && obj.opacity > 1-opacitySnap {
			obj.opacity = 1
			obj.state = Resident
		}
		if target == 0 && obj.opacity < opacitySnap {
			obj.opacity = 0
		}
		obj.node.Opacity = float32(obj.opacity)
		obj.node.Visible = obj.opacity > opacitySnap
	}
}
