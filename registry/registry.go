// Package registry maps component type names to factories. Levels
// resolve every name they reference through one Registry before any
// instantiation starts, so a level either builds clean or fails fast
// with the complete list of missing dependencies.
package registry

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mvelle/wayfarer/component"
)

// Factory creates a fresh, uninitialized component instance.
type Factory func() component.Component

// Registry is an explicit value owned by whoever builds levels; there
// is no process-wide singleton. Registration passes queued with
// OnPopulate run lazily on first lookup, which keeps components from
// importing the code that registers them.
//
// Writes happen during startup population; steady-state play only
// reads. The single-threaded engine model needs no locking here.
type Registry struct {
	log       *zap.Logger
	factories map[string]Factory
	populate  []func(*Registry)
	populated bool
}

// New returns an empty registry. log may be nil.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:       log,
		factories: make(map[string]Factory),
	}
}

// OnPopulate queues a registration pass to run before the first
// lookup. Passes queued after population has already happened run
// immediately.
func (r *Registry) OnPopulate(fn func(*Registry)) {
	if r == nil || fn == nil {
		return
	}
	if r.populated {
		fn(r)
		return
	}
	r.populate = append(r.populate, fn)
}

// Populated reports whether the lazy registration passes have run.
func (r *Registry) Populated() bool {
	return r != nil && r.populated
}

func (r *Registry) ensurePopulated() {
	if r == nil || r.populated {
		return
	}
	r.populated = true
	for _, fn := range r.populate {
		fn(r)
	}
	r.populate = nil
}

// Register stores a factory under name. Re-registration overwrites
// the previous factory with a warning.
func (r *Registry) Register(name string, f Factory) {
	if r == nil || name == "" || f == nil {
		return
	}
	if _, exists := r.factories[name]; exists {
		r.log.Warn("registry: overwriting component factory", zap.String("type", name))
	}
	r.factories[name] = f
}

// Resolve returns the factory registered under name.
func (r *Registry) Resolve(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	r.ensurePopulated()
	f, ok := r.factories[name]
	return f, ok
}

// Missing returns the sorted subset of names with no registered
// factory. An empty result means every reference resolves.
func (r *Registry) Missing(names []string) []string {
	if r == nil {
		return append([]string(nil), names...)
	}
	r.ensurePopulated()
	seen := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := r.factories[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Types returns the sorted registered type names, for diagnostics.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.ensurePopulated()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
