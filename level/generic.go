package level

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/event"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

// MovementConfig is the object handed to the physics/movement
// collaborator: whether to follow terrain, the height query backing
// it, and the level's tunable movement constants.
type MovementConfig struct {
	TerrainFollow bool
	HeightAt      func(x, z float32) float32
	Boundary      Boundary
	Constants     map[string]float64
	Gravity       scene.Vec3
	AutoColliders bool
}

// Generic builds a level from a configuration document: it validates
// every component reference up front, initializes the terrain
// generator (load-bearing), then environment, lighting and the
// systems list (best-effort unless marked required), and derives the
// spawn point from terrain height queries.
type Generic struct {
	*Base

	cfg Config
	reg *registry.Registry
	bus *event.Bus

	comps    map[string]component.Component
	order    []string
	terrain  component.Terrain
	spawn    scene.Vec3
	movement MovementConfig
	degraded []string
}

// NewGeneric constructs a level in the Constructed state. Nothing is
// attached or loaded until Initialize runs.
func NewGeneric(cfg Config, reg *registry.Registry, bus *event.Bus, gen uint64, log *zap.Logger, stats *scene.Stats) *Generic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generic{
		Base:  NewBase(cfg.ID, gen, log.With(zap.String("level", cfg.ID)), stats),
		cfg:   cfg,
		reg:   reg,
		bus:   bus,
		comps: make(map[string]component.Component),
	}
}

// Config returns the document this level was built from.
func (g *Generic) Config() Config { return g.cfg }

// Initialize drives the five-phase construction sequence. On fatal
// failure the partial scene is disposed before the error returns, so
// no nodes from the failed attempt stay attached. A call on a level
// that is not Constructed is rejected and leaves the level untouched.
func (g *Generic) Initialize(ctx context.Context) error {
	if g == nil {
		return ErrInvalidState
	}
	if err := g.Run(ctx, g); err != nil {
		// Run only moves to Initializing once the attempt actually
		// starts; a rejected call must not tear down a live level.
		if g.State() == StateInitializing {
			g.abort()
		}
		return err
	}
	return nil
}

// abort tears down whatever a failed construction attached. The level
// ends Disposed, never half-built.
func (g *Generic) abort() {
	for i := len(g.order) - 1; i >= 0; i-- {
		if c := g.comps[g.order[i]]; c != nil {
			c.Dispose()
		}
	}
	g.comps = make(map[string]component.Component)
	g.order = nil
	g.terrain = nil
	_ = g.Base.Dispose()
}

// CreateEnvironment validates the configuration and builds the
// terrain. Terrain problems are fatal; a missing optional reference
// only degrades the level.
func (g *Generic) CreateEnvironment(ctx context.Context) error {
	missing := g.reg.Missing(g.cfg.ComponentTypes())
	if len(missing) > 0 {
		cfgErr := &ConfigError{LevelID: g.cfg.ID, Missing: missing}
		if g.missingIsFatal(missing) {
			return cfgErr
		}
		g.Log().Warn("level: loading degraded, optional components unresolved",
			zap.Strings("missing", missing))
	}

	terr, err := g.initComponent(ctx, g.cfg.Terrain.Type, g.cfg.Terrain.Params)
	if err != nil {
		return &FatalError{LevelID: g.cfg.ID, Stage: "terrain", Err: err}
	}
	t, ok := terr.(component.Terrain)
	if !ok {
		return &FatalError{
			LevelID: g.cfg.ID,
			Stage:   "terrain",
			Err:     fmt.Errorf("component %q does not answer height queries", g.cfg.Terrain.Type),
		}
	}
	g.terrain = t

	for _, eff := range g.cfg.Environment.Effects {
		if eff == "" {
			continue
		}
		name := "effect." + eff
		if _, err := g.initComponent(ctx, name, nil); err != nil {
			g.degrade(name, err)
		}
	}
	return nil
}

// CreateLighting resolves the lighting mode component, best-effort.
func (g *Generic) CreateLighting(ctx context.Context) error {
	if g.cfg.Environment.Lighting == "" {
		return nil
	}
	name := "lighting." + g.cfg.Environment.Lighting
	if _, err := g.initComponent(ctx, name, nil); err != nil {
		g.degrade(name, err)
	}
	return nil
}

// CreateInteractions instantiates the ordered systems list. Failures
// are caught and logged per entry; only entries marked required abort
// the level.
func (g *Generic) CreateInteractions(ctx context.Context) error {
	for _, sys := range g.cfg.Systems {
		if sys.Type == "" {
			continue
		}
		if _, err := g.initComponent(ctx, sys.Type, sys.Config); err != nil {
			if sys.Required {
				return &FatalError{LevelID: g.cfg.ID, Stage: "system " + sys.Type, Err: err}
			}
			g.degrade(sys.Type, err)
		}
	}
	return nil
}

// SetupPhysics assembles the movement configuration for the physics
// collaborator.
func (g *Generic) SetupPhysics(ctx context.Context) error {
	grav := g.cfg.Physics.Gravity
	if grav == [3]float32{} {
		grav = [3]float32{0, -9.81, 0}
	}
	g.movement = MovementConfig{
		TerrainFollow: g.cfg.Movement.TerrainFollow,
		HeightAt:      g.terrain.HeightAt,
		Boundary:      g.cfg.Movement.Boundary,
		Constants:     g.cfg.Movement.Constants,
		Gravity:       scene.Vec3{X: grav[0], Y: grav[1], Z: grav[2]},
		AutoColliders: g.cfg.Physics.AutoColliders,
	}
	return nil
}

// OnReady derives the spawn point by sampling the terrain at the
// configured spawn column and announces the level.
func (g *Generic) OnReady(ctx context.Context) error {
	hint := g.cfg.Movement.Spawn
	clearance := hint.Clearance
	if clearance <= 0 {
		clearance = DefaultSpawnClearance
	}
	g.spawn = scene.Vec3{
		X: hint.X,
		Y: g.terrain.HeightAt(hint.X, hint.Z) + clearance,
		Z: hint.Z,
	}

	g.Log().Info("level ready",
		zap.Float32("spawn_x", g.spawn.X),
		zap.Float32("spawn_y", g.spawn.Y),
		zap.Float32("spawn_z", g.spawn.Z),
		zap.Strings("degraded", g.degraded))
	g.bus.Publish(event.Event{Type: event.LevelReady, Data: g.cfg.ID})
	return nil
}

// Update ticks every live component once. Calling it outside Ready is
// an error; a component that panics mid-frame is logged, disposed and
// dropped, leaving the level running without it.
func (g *Generic) Update(dt float64) error {
	if err := g.EnsureReady(); err != nil {
		return err
	}
	var dead []string
	for _, name := range g.order {
		c := g.comps[name]
		if c == nil {
			continue
		}
		if err := safeUpdate(c, dt); err != nil {
			g.degrade(name, err)
			c.Dispose()
			dead = append(dead, name)
		}
	}
	for _, name := range dead {
		delete(g.comps, name)
	}
	return nil
}

// Dispose tears down components in reverse initialization order, then
// the scene subtree and registered disposables via the Base.
func (g *Generic) Dispose() error {
	if g == nil {
		return ErrInvalidState
	}
	if g.State() == StateDisposed {
		return fmt.Errorf("%w: dispose after disposed", ErrInvalidState)
	}
	for i := len(g.order) - 1; i >= 0; i-- {
		if c := g.comps[g.order[i]]; c != nil {
			c.Dispose()
		}
	}
	g.comps = make(map[string]component.Component)
	g.order = nil
	g.terrain = nil
	return g.Base.Dispose()
}

// Movement returns the movement configuration for the physics
// collaborator. Valid once the level is Ready.
func (g *Generic) Movement() MovementConfig { return g.movement }

// Spawn returns the derived spawn point.
func (g *Generic) Spawn() scene.Vec3 { return g.spawn }

// Component returns the live component instance for a type name.
func (g *Generic) Component(name string) (component.Component, bool) {
	c, ok := g.comps[name]
	return c, ok
}

// Degraded lists the component type names that failed and were
// skipped. The level is Ready but missing those capabilities.
func (g *Generic) Degraded() []string { return g.degraded }

func (g *Generic) missingIsFatal(missing []string) bool {
	required := make(map[string]bool)
	for _, name := range g.cfg.RequiredTypes() {
		required[name] = true
	}
	for _, name := range missing {
		if required[name] {
			return true
		}
	}
	return false
}

// initComponent resolves, instantiates and initializes one component,
// recording it for update and disposal. Panics inside Init surface as
// errors so one broken component cannot take the level down unless it
// is load-bearing.
func (g *Generic) initComponent(ctx context.Context, name string, cfg map[string]any) (component.Component, error) {
	factory, ok := g.reg.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("component %q not registered", name)
	}
	c := factory()
	if c == nil {
		return nil, fmt.Errorf("component %q factory returned nil", name)
	}

	sc := &component.Scope{
		Root:   g.Root(),
		Config: cfg,
		Log:    g.Log().With(zap.String("component", name)),
	}
	if g.terrain != nil {
		sc.HeightAt = g.terrain.HeightAt
	}

	if err := safeInit(ctx, c, sc); err != nil {
		c.Dispose()
		return nil, err
	}
	g.comps[name] = c
	g.order = append(g.order, name)
	return c, nil
}

func (g *Generic) degrade(name string, err error) {
	g.degraded = append(g.degraded, name)
	g.Log().Warn("level: system degraded",
		zap.String("component", name),
		zap.Error(err))
}

// safeInit converts a component panic into an error.
func safeInit(ctx context.Context, c component.Component, sc *component.Scope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("component init panicked: %v", r)
		}
	}()
	return c.Init(ctx, sc)
}

// safeUpdate converts a component panic into an error.
func safeUpdate(c component.Component, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("component update panicked: %v", r)
		}
	}()
	c.Update(dt)
	return nil
}
