package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/mvelle/wayfarer"
	"github.com/mvelle/wayfarer/config"
	"github.com/mvelle/wayfarer/culling"
	"github.com/mvelle/wayfarer/environ"
	"github.com/mvelle/wayfarer/event"
	"github.com/mvelle/wayfarer/level"
	"github.com/mvelle/wayfarer/levels"
	"github.com/mvelle/wayfarer/props"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
	"github.com/mvelle/wayfarer/script"
	"github.com/mvelle/wayfarer/terrain"
	"github.com/mvelle/wayfarer/transition"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	viewScale = 1.5 // pixels per world unit in the top-down view
	cellSize  = 16  // heightmap shading cell, pixels
)

type Game struct {
	log     *zap.Logger
	cfg     *config.Config
	bus     *event.Bus
	stats   *scene.Stats
	cam     *scene.Camera
	fader   *timeFader
	manager *transition.Manager
	store   *level.Store
	watcher *level.Watcher
	ids     []string

	// Fields below are owned by the render goroutine; active is only
	// attached while the manager is idle and detached before any
	// transition starts, so Draw never walks a scene mid-disposal.
	active *level.Generic
	culler *culling.Manager

	mu      sync.Mutex
	lastErr error
}

func NewGame(cfg *config.Config, log *zap.Logger) (*Game, error) {
	reg := registry.New(log)
	reg.OnPopulate(terrain.Register)
	reg.OnPopulate(environ.Register)
	reg.OnPopulate(props.Register)
	reg.OnPopulate(script.Register)

	var (
		store *level.Store
		err   error
	)
	if cfg.Levels.Dir != "" {
		store, err = level.NewStore(os.DirFS(cfg.Levels.Dir), log)
	} else {
		store, err = level.NewStore(levels.FS, log)
	}
	if err != nil {
		return nil, err
	}
	ids, err := store.IDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no level documents found")
	}

	bus := event.NewBus()
	stats := &scene.Stats{}
	fader := newTimeFader(cfg.Transition.FadeDuration)
	cam := &scene.Camera{Pos: scene.Vec3{Y: 80}, Forward: scene.Vec3{Y: -1}, FOV: 2.4}

	build := func(doc level.Config, gen uint64) transition.Level {
		return level.NewGeneric(doc, reg, bus, gen, log, stats)
	}
	manager := transition.NewManager(store, build, fader, bus, log, transition.Options{
		InitTimeout:  cfg.Transition.InitTimeout,
		HistoryLimit: cfg.Transition.HistoryLimit,
	})

	g := &Game{
		log:     log,
		cfg:     cfg,
		bus:     bus,
		stats:   stats,
		cam:     cam,
		fader:   fader,
		manager: manager,
		store:   store,
		ids:     ids,
	}

	bus.Subscribe(event.TransitionError, func(e event.Event) {
		if data, ok := e.Data.(transition.ErrorData); ok {
			g.mu.Lock()
			g.lastErr = data.Err
			g.mu.Unlock()
		}
	})
	bus.Subscribe(event.LevelReady, func(e event.Event) {
		log.Info("ready", zap.Any("level", e.Data))
	})

	if cfg.Levels.Watch && cfg.Levels.Dir != "" {
		g.watcher, err = level.WatchDir(cfg.Levels.Dir)
		if err != nil {
			return nil, err
		}
	}

	g.startSwitch(cfg.Levels.Start)
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

// startSwitch detaches the render-side view of the current level and
// runs the transition off the render goroutine. ErrBusy just means a
// transition is already running; the key press is dropped, not queued.
func (g *Game) startSwitch(id string) {
	g.detach()
	go func() {
		err := g.manager.Switch(context.Background(), id, nil)
		if err != nil && !errors.Is(err, transition.ErrBusy) && !errors.Is(err, transition.ErrSameLevel) {
			g.log.Warn("switch rejected", zap.String("level", id), zap.Error(err))
		}
	}()
}

func (g *Game) startBack() {
	g.detach()
	go func() {
		if err := g.manager.Back(context.Background(), nil); err != nil {
			g.log.Warn("back rejected", zap.Error(err))
		}
	}()
}

func (g *Game) startReload() {
	g.detach()
	go func() {
		if err := g.manager.Reload(context.Background()); err != nil {
			g.log.Warn("reload rejected", zap.Error(err))
		}
	}()
}

func (g *Game) detach() {
	g.active = nil
	g.culler = nil
}

// attach picks up the freshly initialized level once the manager is
// idle again: culling over its subtree, camera over its spawn point.
func (g *Game) attach() {
	lvl, ok := g.manager.Current().(*level.Generic)
	if !ok || lvl == nil {
		return
	}
	g.active = lvl
	g.culler = culling.NewManager(lvl.Root(), g.cam, culling.Options{
		RenderDistance: g.cfg.Culling.RenderDistance,
		FadeDistance:   g.cfg.Culling.FadeDistance,
		UnloadDistance: g.cfg.Culling.UnloadDistance,
		ScanInterval:   g.cfg.Culling.ScanInterval,
		FadeRate:       g.cfg.Culling.FadeRate,
	}, g.log, g.stats)

	spawn := lvl.Spawn()
	g.cam.Pos = scene.Vec3{X: spawn.X, Y: spawn.Y + 80, Z: spawn.Z}
}

func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	g.handleInput()
	g.drainWatcher()

	if g.active == nil && g.manager.State() == transition.StateIdle && g.manager.Current() != nil {
		g.attach()
	}

	if g.active != nil {
		if err := g.active.Update(dt); err != nil {
			g.detach()
		}
	}
	g.culler.Update(dt)
	return nil
}

func (g *Game) handleInput() {
	for i, key := range []ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
		ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
		ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	} {
		if i < len(g.ids) && inpututil.IsKeyJustPressed(key) {
			g.startSwitch(g.ids[i])
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.startBack()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.startReload()
	}

	const panSpeed = 2.5
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pos.X -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pos.X += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pos.Z -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pos.Z += panSpeed
	}
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case id, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if id == g.manager.CurrentID() && g.manager.State() == transition.StateIdle {
				g.log.Info("level document changed, reloading", zap.String("level", id))
				g.startReload()
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("watch", zap.Error(err))
			}
			return
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 22, A: 255})

	if g.active != nil {
		g.drawHeightmap(screen)
		g.drawNodes(screen)
	}

	if lvl := g.fader.Level(); lvl > 0 {
		a := uint8(lvl * 255)
		vector.FillRect(screen, 0, 0, baseWidth, baseHeight, color.RGBA{A: a}, false)
	}

	ebitenutil.DebugPrint(screen, g.statusLine())
}

func (g *Game) drawHeightmap(screen *ebiten.Image) {
	heightAt := g.active.Movement().HeightAt
	if heightAt == nil {
		return
	}
	for py := 0; py < baseHeight; py += cellSize {
		for px := 0; px < baseWidth; px += cellSize {
			wx := g.cam.Pos.X + (float32(px)-baseWidth/2)/viewScale
			wz := g.cam.Pos.Z + (float32(py)-baseHeight/2)/viewScale
			h := heightAt(wx, wz)

			var c color.RGBA
			if h < 0 {
				// Below the waterline: deeper is darker blue.
				d := clamp8(96 + h*2)
				c = color.RGBA{R: 10, G: 30, B: d, A: 255}
			} else {
				v := clamp8(60 + h*9)
				c = color.RGBA{R: v / 3, G: v, B: v / 4, A: 255}
			}
			vector.FillRect(screen, float32(px), float32(py), cellSize, cellSize, c, false)
		}
	}
}

func (g *Game) drawNodes(screen *ebiten.Image) {
	g.active.Root().Walk(func(n *scene.Node) bool {
		if !n.Visible {
			return true
		}
		switch n.Kind {
		case scene.KindMesh:
			if n.Recipe == nil {
				return true // terrain is drawn as the heightmap
			}
			x, y := g.toScreen(n.WorldPos())
			a := uint8(n.Opacity * 220)
			vector.FillRect(screen, x-3, y-3, 6, 6, color.RGBA{R: 170, G: 120, B: 60, A: a}, false)
		case scene.KindExternal:
			x, y := g.toScreen(n.WorldPos())
			vector.StrokeRect(screen, x-4, y-4, 8, 8, 1, color.RGBA{R: 240, G: 220, B: 80, A: 200}, false)
		case scene.KindLight:
			x, y := g.toScreen(n.WorldPos())
			vector.StrokeRect(screen, x-2, y-2, 4, 4, 1, color.RGBA{R: 250, G: 250, B: 250, A: 120}, false)
		}
		return true
	})

	// Spawn marker.
	x, y := g.toScreen(g.active.Spawn())
	vector.StrokeRect(screen, x-5, y-5, 10, 10, 2, color.RGBA{R: 80, G: 200, B: 255, A: 255}, false)
}

func (g *Game) toScreen(p scene.Vec3) (float32, float32) {
	return (p.X-g.cam.Pos.X)*viewScale + baseWidth/2,
		(p.Z-g.cam.Pos.Z)*viewScale + baseHeight/2
}

func (g *Game) statusLine() string {
	diag := wayfarer.Snapshot(g.stats, g.culler)
	snap := diag.Disposal
	counts := diag.Residency

	id := g.manager.CurrentID()
	if id == "" {
		id = "-"
	}
	g.mu.Lock()
	lastErr := g.lastErr
	g.mu.Unlock()

	s := fmt.Sprintf(
		"level: %s  state: %s  fps: %.0f\ndisposed: nodes=%d geo=%d mat=%d tex=%d\nresidency: res=%d out=%d unloaded=%d in=%d",
		id, g.manager.State(), ebiten.ActualFPS(),
		snap.Nodes, snap.Geometries, snap.Materials, snap.Textures,
		counts.Resident, counts.FadingOut, counts.Unloaded, counts.FadingIn,
	)
	if g.active != nil && len(g.active.Degraded()) > 0 {
		s += fmt.Sprintf("\ndegraded: %v", g.active.Degraded())
	}
	if lastErr != nil {
		s += fmt.Sprintf("\nlast error: %v", lastErr)
	}
	s += "\n[1-9] switch  [backspace] back  [r] reload  [wasd] pan"
	return s
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func clamp8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
