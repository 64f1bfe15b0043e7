package level

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/scene"
)

// State is the level lifecycle position.
type State int

const (
	StateConstructed State = iota
	StateInitializing
	StateReady
	StateDisposing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	default:
		return "invalid"
	}
}

// Disposable is anything enrolled for guaranteed cleanup when the
// owning level is destroyed.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a plain function to Disposable.
type DisposableFunc func()

func (f DisposableFunc) Dispose() { f() }

// Phases is the five-phase construction sequence every level
// fulfills. The Base runner guarantees strict ordering and that
// OnReady only runs after every earlier phase succeeded. Each phase
// may block on asynchronous loads and must honor ctx.
type Phases interface {
	CreateEnvironment(ctx context.Context) error
	CreateLighting(ctx context.Context) error
	CreateInteractions(ctx context.Context) error
	SetupPhysics(ctx context.Context) error
	OnReady(ctx context.Context) error
}

// Base carries the lifecycle state, the level-owned scene subtree and
// the disposable registry shared by every level implementation.
//
// A level never destroys itself; the transition manager owns the
// single disposal path.
type Base struct {
	root  *scene.Node
	log   *zap.Logger
	stats *scene.Stats
	state State

	disposables []Disposable
}

// NewBase creates the lifecycle core for a level. gen is the
// generation stamp applied to every node attached under the root so
// scanners can tell live nodes from a level mid-disposal. log and
// stats may be nil.
func NewBase(name string, gen uint64, log *zap.Logger, stats *scene.Stats) *Base {
	if log == nil {
		log = zap.NewNop()
	}
	root := scene.NewNode(name, scene.KindGroup)
	root.Gen = gen
	return &Base{
		root:  root,
		log:   log,
		stats: stats,
		state: StateConstructed,
	}
}

// Root returns the scene subtree this level exclusively owns while
// Ready.
func (b *Base) Root() *scene.Node {
	if b == nil {
		return nil
	}
	return b.root
}

// State returns the current lifecycle state.
func (b *Base) State() State {
	if b == nil {
		return StateDisposed
	}
	return b.state
}

// Generation returns the root node's generation stamp.
func (b *Base) Generation() uint64 {
	if b == nil || b.root == nil {
		return 0
	}
	return b.root.Gen
}

// Log returns the level logger, never nil.
func (b *Base) Log() *zap.Logger {
	if b == nil || b.log == nil {
		return zap.NewNop()
	}
	return b.log
}

// RegisterDisposable enrolls obj for automatic cleanup when the level
// is disposed. Disposal runs in reverse registration order.
func (b *Base) RegisterDisposable(obj Disposable) error {
	if b == nil {
		return ErrInvalidState
	}
	if b.state == StateDisposed || b.state == StateDisposing {
		return fmt.Errorf("%w: register disposable while %s", ErrInvalidState, b.state)
	}
	if obj != nil {
		b.disposables = append(b.disposables, obj)
	}
	return nil
}

// Run drives the five construction phases strictly in order. On the
// first failing phase it stops and returns that error, leaving the
// caller (the transition manager) to dispose the partial level.
func (b *Base) Run(ctx context.Context, p Phases) error {
	if b == nil || p == nil {
		return ErrInvalidState
	}
	if b.state != StateConstructed {
		return fmt.Errorf("%w: initialize while %s", ErrInvalidState, b.state)
	}
	b.state = StateInitializing

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"environment", p.CreateEnvironment},
		{"lighting", p.CreateLighting},
		{"interactions", p.CreateInteractions},
		{"physics", p.SetupPhysics},
		{"ready", p.OnReady},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("level %q: phase %s: %w", b.root.Name, step.name, err)
		}
		if err := step.fn(ctx); err != nil {
			return err
		}
	}

	b.state = StateReady
	return nil
}

// Dispose releases the scene subtree through the resource disposal
// utility, then every registered disposable last-registered-first,
// then marks the level Disposed. Any lifecycle call after that fails
// with ErrInvalidState.
func (b *Base) Dispose() error {
	if b == nil {
		return ErrInvalidState
	}
	if b.state == StateDisposed {
		return fmt.Errorf("%w: dispose after disposed", ErrInvalidState)
	}
	b.state = StateDisposing

	scene.DisposeGraph(b.root, b.stats, b.log)

	for i := len(b.disposables) - 1; i >= 0; i-- {
		if d := b.disposables[i]; d != nil {
			d.Dispose()
		}
	}
	b.disposables = nil

	b.state = StateDisposed
	return nil
}

// EnsureReady guards per-frame entry points.
func (b *Base) EnsureReady() error {
	if b == nil || b.state != StateReady {
		return fmt.Errorf("%w: level is %s", ErrInvalidState, b.State())
	}
	return nil
}
