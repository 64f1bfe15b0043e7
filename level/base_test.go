package level

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseRecorder implements Phases and records call order.
type phaseRecorder struct {
	calls []string
	fail  map[string]error
}

func (p *phaseRecorder) step(name string) error {
	p.calls = append(p.calls, name)
	return p.fail[name]
}

func (p *phaseRecorder) CreateEnvironment(context.Context) error  { return p.step("environment") }
func (p *phaseRecorder) CreateLighting(context.Context) error     { return p.step("lighting") }
func (p *phaseRecorder) CreateInteractions(context.Context) error { return p.step("interactions") }
func (p *phaseRecorder) SetupPhysics(context.Context) error       { return p.step("physics") }
func (p *phaseRecorder) OnReady(context.Context) error            { return p.step("ready") }

func TestRunPhaseOrder(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	p := &phaseRecorder{}

	require.Equal(t, StateConstructed, b.State())
	require.NoError(t, b.Run(context.Background(), p))

	assert.Equal(t, []string{"environment", "lighting", "interactions", "physics", "ready"}, p.calls)
	assert.Equal(t, StateReady, b.State())
	assert.Equal(t, uint64(1), b.Generation())
	assert.Equal(t, uint64(1), b.Root().Gen)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	boom := errors.New("no lights")
	p := &phaseRecorder{fail: map[string]error{"lighting": boom}}

	err := b.Run(context.Background(), p)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"environment", "lighting"}, p.calls, "later phases never run")
	assert.NotEqual(t, StateReady, b.State())
}

func TestRunHonorsContext(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Run(ctx, &phaseRecorder{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsSecondInitialize(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	require.NoError(t, b.Run(context.Background(), &phaseRecorder{}))

	err := b.Run(context.Background(), &phaseRecorder{})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateReady, b.State(), "failed call leaves state untouched")
}

func TestDisposablesRunInReverseOrder(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	var order []string
	require.NoError(t, b.RegisterDisposable(DisposableFunc(func() { order = append(order, "first") })))
	require.NoError(t, b.RegisterDisposable(DisposableFunc(func() { order = append(order, "second") })))

	require.NoError(t, b.Dispose())
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, StateDisposed, b.State())
	assert.True(t, b.Root().Disposed())
}

func TestLifecycleAfterDispose(t *testing.T) {
	b := NewBase("test", 1, nil, nil)
	require.NoError(t, b.Dispose())

	assert.ErrorIs(t, b.Dispose(), ErrInvalidState)
	assert.ErrorIs(t, b.Run(context.Background(), &phaseRecorder{}), ErrInvalidState)
	assert.ErrorIs(t, b.RegisterDisposable(DisposableFunc(func() {})), ErrInvalidState)
	assert.ErrorIs(t, b.EnsureReady(), ErrInvalidState)
	assert.Equal(t, StateDisposed, b.State(), "state survives rejected calls")
}
