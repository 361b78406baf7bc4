package emitter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownKind = errors.New("emitter: unknown kind")
	ErrMissingKind = errors.New("emitter: missing kind")
)

// Registry maps kind names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var defaultRegistry = NewRegistry()

// Register adds a kind to the default registry.
func Register(kind string, f Factory) error { return defaultRegistry.Register(kind, f) }

// Kinds lists the kinds in the default registry.
func Kinds() []string { return defaultRegistry.Kinds() }

// Build builds entries with the default registry.
func Build(entries map[string]map[string]any) ([]Named, error) {
	return defaultRegistry.Build(entries)
}

func (r *Registry) Register(kind string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == "" || f == nil {
		return fmt.Errorf("emitter: invalid registration for kind %q", kind)
	}
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("emitter: kind '%s' already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs one emitter per entry, in name order. Each entry names
// its kind under KindKey. On failure the emitters built so far are closed.
func (r *Registry) Build(entries map[string]map[string]any) ([]Named, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]Named, 0, len(names))
	for _, name := range names {
		e, err := r.build(name, entries[name])
		if err != nil {
			_ = CloseAll(built)
			return nil, fmt.Errorf("emitter %q: %w", name, err)
		}
		built = append(built, e)
	}
	return built, nil
}

func (r *Registry) build(name string, entry map[string]any) (Named, error) {
	raw, ok := entry[KindKey]
	if !ok {
		return Named{}, ErrMissingKind
	}
	kind, ok := raw.(string)
	if !ok {
		return Named{}, fmt.Errorf("%w: %q must be a string, got %T", ErrMissingKind, KindKey, raw)
	}

	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return Named{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}

	opts := make(map[string]any, len(entry))
	for k, v := range entry {
		if k != KindKey {
			opts[k] = v
		}
	}
	e, err := f(name, opts)
	if err != nil {
		return Named{}, err
	}
	return Named{Name: name, Kind: kind, Emitter: e}, nil
}
