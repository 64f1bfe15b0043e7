// Package script runs tengo-scripted level systems. A script defines
// init(engine) and update(engine, dt); the engine map exposes a small
// API for querying terrain and placing nodes, so content authors can
// add behavior without recompiling.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/component"
	"github.com/mvelle/wayfarer/registry"
	"github.com/mvelle/wayfarer/scene"
)

// Type is the system descriptor type name.
const Type = "script"

// Register installs the script component factory into reg.
func Register(reg *registry.Registry) {
	reg.Register(Type, func() component.Component { return &System{} })
}

const dispatch = `
if __phase == "init" {
	init(__engine, __state)
} else if __phase == "update" {
	update(__engine, __state, __dt)
}
`

// System compiles the configured source once at Init and re-runs the
// compiled program each frame with __phase set to "update". The whole
// program re-executes per phase, so script-visible state that must
// survive between frames lives in the shared __state map, not in
// top-level variables. Update is synchronous; a script that loops
// forever stalls the frame, which is the same contract every
// component Update has.
type System struct {
	compiled *tengo.Compiled
	state    *tengo.Map
	group    *scene.Node
	sc       *component.Scope
}

func (s *System) Init(ctx context.Context, sc *component.Scope) error {
	if sc == nil || sc.Root == nil {
		return fmt.Errorf("script: nil scope")
	}
	src, _ := sc.Config["source"].(string)
	if strings.TrimSpace(src) == "" {
		return fmt.Errorf("script: config missing source")
	}

	group := scene.NewNode("script", scene.KindGroup)
	group.Gen = sc.Root.Gen
	sc.Root.AddChild(group)
	s.group = group
	s.sc = sc

	prog := tengo.NewScript([]byte(src + "\n" + dispatch))
	_ = prog.Add("__phase", "")
	_ = prog.Add("__dt", 0.0)
	_ = prog.Add("__engine", map[string]any{})
	_ = prog.Add("__state", map[string]any{})
	s.state = &tengo.Map{Value: map[string]tengo.Object{}}
	prog.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := prog.Compile()
	if err != nil {
		return fmt.Errorf("script: compile: %w", err)
	}
	s.compiled = compiled

	if err := s.runPhase(ctx, "init", 0); err != nil {
		return fmt.Errorf("script: init: %w", err)
	}
	return nil
}

func (s *System) Update(dt float64) {
	if s == nil || s.compiled == nil {
		return
	}
	if err := s.runPhase(context.Background(), "update", dt); err != nil {
		s.sc.Logger().Warn("script: update failed", zap.Error(err))
	}
}

func (s *System) Dispose() {
	if s == nil {
		return
	}
	s.compiled = nil
	s.state = nil
	if s.group != nil {
		scene.DisposeGraph(s.group, nil, nil)
		s.group = nil
	}
}

func (s *System) runPhase(ctx context.Context, phase string, dt float64) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__dt", dt); err != nil {
		return err
	}
	if err := s.compiled.Set("__engine", s.engineAPI()); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	return s.compiled.RunContext(ctx)
}

// engineAPI builds the immutable map of host functions handed to the
// script on every phase run.
func (s *System) engineAPI() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		s.sc.Logger().Info("script: " + objectAsString(args[0]))
		return tengo.UndefinedValue, nil
	}}

	values["height"] = &tengo.UserFunction{Name: "height", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.sc.HeightAt == nil || len(args) < 2 {
			return &tengo.Float{Value: 0}, nil
		}
		x := objectAsFloat(args[0])
		z := objectAsFloat(args[1])
		return &tengo.Float{Value: float64(s.sc.HeightAt(float32(x), float32(z)))}, nil
	}}

	values["add_marker"] = &tengo.UserFunction{Name: "add_marker", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 || s.group == nil {
			return tengo.FalseValue, nil
		}
		name := objectAsString(args[0])
		x := float32(objectAsFloat(args[1]))
		z := float32(objectAsFloat(args[2]))
		y := float32(0)
		if s.sc.HeightAt != nil {
			y = s.sc.HeightAt(x, z)
		}
		n := scene.NewNode(name, scene.KindExternal)
		n.Pos = scene.Vec3{X: x, Y: y, Z: z}
		n.Gen = s.group.Gen
		s.group.AddChild(n)
		return tengo.TrueValue, nil
	}}

	values["marker_count"] = &tengo.UserFunction{Name: "marker_count", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.group == nil {
			return &tengo.Int{Value: 0}, nil
		}
		return &tengo.Int{Value: int64(len(s.group.Children()))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj.(*tengo.String); ok {
		return s.Value
	}
	return strings.Trim(obj.String(), "\"")
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}
