// Package transition mediates exclusive, fade-bracketed switches
// between levels. The manager owns the single disposal path: levels
// are created and destroyed only here, and the outgoing level is
// fully disposed before the incoming one is constructed.
package transition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/event"
	"github.com/mvelle/wayfarer/level"
	"github.com/mvelle/wayfarer/scene"
)

// State is the manager's position in the transition sequence.
type State int

const (
	StateIdle State = iota
	StateFadingOut
	StateDisposingCurrent
	StateCreatingNext
	StateInitializingNext
	StateFadingIn
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFadingOut:
		return "fading_out"
	case StateDisposingCurrent:
		return "disposing_current"
	case StateCreatingNext:
		return "creating_next"
	case StateInitializingNext:
		return "initializing_next"
	case StateFadingIn:
		return "fading_in"
	default:
		return "invalid"
	}
}

// ErrBusy rejects a transition requested while another is in flight.
// There is no queue; callers re-request.
var ErrBusy = errors.New("transition: another transition is in progress")

// ErrSameLevel rejects a transition targeting the current level.
var ErrSameLevel = errors.New("transition: target level is already active")

// ErrNoHistory rejects Back when nothing has been visited.
var ErrNoHistory = errors.New("transition: no previous level in history")

// Fader drives the screen curtain. Both calls block until the fade
// completes and must honor ctx.
type Fader interface {
	FadeOut(ctx context.Context) error
	FadeIn(ctx context.Context) error
}

// Level is what the manager runs: constructed cold, initialized once,
// disposed once.
type Level interface {
	Initialize(ctx context.Context) error
	Dispose() error
	Root() *scene.Node
}

// ConfigSource loads level documents by id. *level.Store satisfies it.
type ConfigSource interface {
	Load(id string) (*level.Config, error)
}

// Builder constructs a cold level from a document. gen is the scene
// generation stamp for the new level's nodes.
type Builder func(cfg level.Config, gen uint64) Level

// StartData is the payload of transition-start events.
type StartData struct {
	From    string
	To      string
	Payload any
}

// ErrorData is the payload of transition-error events; State records
// how far the sequence got.
type ErrorData struct {
	From  string
	To    string
	State State
	Err   error
}

// Options tune the manager.
type Options struct {
	// InitTimeout bounds level initialization so a hung asset load
	// surfaces as a transition error instead of stalling forever.
	// Zero means 30 seconds.
	InitTimeout time.Duration

	// HistoryLimit bounds the transition history. Zero means 16.
	HistoryLimit int
}

// Manager is the level transition state machine. A concurrent request
// while not Idle is rejected with ErrBusy; the busy gate is the state
// itself, guarded by mu, while the long-running steps execute with
// the lock released.
type Manager struct {
	src   ConfigSource
	build Builder
	fader Fader
	bus   *event.Bus
	log   *zap.Logger
	opts  Options

	mu        sync.Mutex
	state     State
	current   Level
	currentID string
	gen       uint64
	history   *History
}

// NewManager wires a transition manager. fader must not be nil; bus
// and log may be.
func NewManager(src ConfigSource, build Builder, fader Fader, bus *event.Bus, log *zap.Logger, opts Options) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = 30 * time.Second
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 16
	}
	return &Manager{
		src:     src,
		build:   build,
		fader:   fader,
		bus:     bus,
		log:     log,
		opts:    opts,
		state:   StateIdle,
		history: NewHistory(opts.HistoryLimit),
	}
}

// State returns the current machine state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the active level, nil during transitions or before
// the first one.
func (m *Manager) Current() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentID returns the active level id, "" if none.
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}

// History returns the retained transition records, oldest first.
func (m *Manager) History() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Records()
}

// Switch transitions to the level identified by targetID. It blocks
// until the sequence completes or fails. Whatever happens after the
// fade-out starts, the fade is restored before Switch returns: the
// screen is never left opaque and the manager never stays busy.
func (m *Manager) Switch(ctx context.Context, targetID string, payload any) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrBusy
	}
	if targetID == m.currentID && m.current != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSameLevel, targetID)
	}

	// Reject unknown targets before anything fades.
	cfg, err := m.src.Load(targetID)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("transition: target %q: %w", targetID, err)
	}

	fromID := m.currentID
	outgoing := m.current
	m.state = StateFadingOut
	m.mu.Unlock()

	m.log.Info("transition started",
		zap.String("from", fromID), zap.String("to", targetID))
	m.bus.Publish(event.Event{Type: event.TransitionStart, Data: StartData{
		From: fromID, To: targetID, Payload: payload,
	}})

	err = m.run(ctx, fromID, targetID, payload, outgoing, cfg)
	failedAt := m.State()

	// Step 7 runs on success and failure alike: restore visibility.
	m.setState(StateFadingIn)
	if fadeErr := m.fader.FadeIn(ctx); fadeErr != nil {
		m.log.Warn("transition: fade-in failed", zap.Error(fadeErr))
	}

	if err != nil {
		m.setState(StateIdle)
		m.log.Error("transition failed",
			zap.String("from", fromID), zap.String("to", targetID),
			zap.Stringer("state", failedAt), zap.Error(err))
		m.bus.Publish(event.Event{Type: event.TransitionError, Data: ErrorData{
			From: fromID, To: targetID, State: failedAt, Err: err,
		}})
		return err
	}

	m.setState(StateIdle)
	m.log.Info("transition complete",
		zap.String("from", fromID), zap.String("to", targetID))
	m.bus.Publish(event.Event{Type: event.TransitionComplete, Data: StartData{
		From: fromID, To: targetID, Payload: payload,
	}})
	return nil
}

// run executes fade-out through history append. The caller owns fade
// restoration and event emission.
func (m *Manager) run(ctx context.Context, fromID, targetID string, payload any, outgoing Level, cfg *level.Config) error {
	if err := m.fader.FadeOut(ctx); err != nil {
		return fmt.Errorf("transition: fade out: %w", err)
	}

	// The outgoing level must be fully gone, disposables included,
	// before the next one is constructed.
	m.setState(StateDisposingCurrent)
	if outgoing != nil {
		if err := outgoing.Dispose(); err != nil {
			return fmt.Errorf("transition: dispose %q: %w", fromID, err)
		}
		m.mu.Lock()
		m.current = nil
		m.currentID = ""
		m.mu.Unlock()
	}

	m.setState(StateCreatingNext)
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()
	next := m.build(*cfg, gen)
	if next == nil {
		return fmt.Errorf("transition: builder returned no level for %q", targetID)
	}

	m.setState(StateInitializingNext)
	initCtx, cancel := context.WithTimeout(ctx, m.opts.InitTimeout)
	defer cancel()
	if err := next.Initialize(initCtx); err != nil {
		return fmt.Errorf("transition: initialize %q: %w", targetID, err)
	}

	m.mu.Lock()
	m.current = next
	m.currentID = targetID
	// Reloads keep history as it was; Back should never target the
	// level the player is already in.
	if fromID != targetID {
		m.history.Push(Record{From: fromID, To: targetID, Payload: payload, At: time.Now()})
	}
	m.mu.Unlock()
	return nil
}

// Reload rebuilds the current level from a freshly loaded document,
// running the full dispose-then-create sequence. Used for hot reload
// when a level document changes on disk.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.current == nil {
		m.mu.Unlock()
		return fmt.Errorf("transition: nothing to reload")
	}
	targetID := m.currentID

	cfg, err := m.src.Load(targetID)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("transition: reload %q: %w", targetID, err)
	}

	outgoing := m.current
	m.state = StateFadingOut
	m.mu.Unlock()

	m.log.Info("level reload", zap.String("level", targetID))

	err = m.run(ctx, targetID, targetID, nil, outgoing, cfg)
	failedAt := m.State()

	m.setState(StateFadingIn)
	if fadeErr := m.fader.FadeIn(ctx); fadeErr != nil {
		m.log.Warn("transition: fade-in failed", zap.Error(fadeErr))
	}
	m.setState(StateIdle)

	if err != nil {
		m.log.Error("level reload failed", zap.String("level", targetID),
			zap.Stringer("state", failedAt), zap.Error(err))
		m.bus.Publish(event.Event{Type: event.TransitionError, Data: ErrorData{
			From: targetID, To: targetID, State: failedAt, Err: err,
		}})
		return err
	}
	m.bus.Publish(event.Event{Type: event.TransitionComplete, Data: StartData{
		From: targetID, To: targetID,
	}})
	return nil
}

// Back transitions to the previous level per the history.
func (m *Manager) Back(ctx context.Context, payload any) error {
	m.mu.Lock()
	target, ok := m.history.Previous()
	m.mu.Unlock()
	if !ok {
		return ErrNoHistory
	}
	return m.Switch(ctx, target, payload)
}

// setState records the new state and returns the one it replaced.
func (m *Manager) setState(s State) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.state = s
	return prev
}
