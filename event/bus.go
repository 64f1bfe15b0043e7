// Package event carries the engine's outward-facing notifications.
// External collaborators (UI, audio, story) subscribe; the engine
// publishes and never depends on who is listening.
package event

// Type names a notification.
type Type string

const (
	TransitionStart    Type = "transition_start"
	TransitionComplete Type = "transition_complete"
	TransitionError    Type = "transition_error"
	LevelReady         Type = "level_ready"
)

// Event is one published notification.
type Event struct {
	Type Type
	Data any
}

// Handler receives published events.
type Handler func(Event)

// Bus is a synchronous publish/subscribe hub. Handlers run inline on
// the publishing goroutine in subscription order; the engine's
// single-threaded model means no locking here.
type Bus struct {
	handlers map[Type][]Handler
	any      []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers h for events of type t.
func (b *Bus) Subscribe(t Type, h Handler) {
	if b == nil || h == nil {
		return
	}
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	if b == nil || h == nil {
		return
	}
	b.any = append(b.any, h)
}

// Publish delivers evt to all matching handlers. A nil bus drops the
// event, so publishers never need a guard.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	for _, h := range b.handlers[evt.Type] {
		h(evt)
	}
	for _, h := range b.any {
		h(evt)
	}
}
