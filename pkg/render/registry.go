package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownRenderer is returned when a renderer name is not registered.
	ErrUnknownRenderer = errors.New("render: unknown renderer")
	// ErrNoRenderers is returned by Default on an empty registry.
	ErrNoRenderers = errors.New("render: no renderers registered")
)

// Registry keeps renderers by name in registration order. The first renderer
// registered is the fallback for requests that do not name one.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds renderer under its Name. Names are case-insensitive and may
// only be registered once.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	name := normalizeName(renderer.Name())
	if name == "" {
		return errors.New("render: renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.byName[name] = renderer
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered under name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.byName[normalizeName(name)]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

// Default returns the first registered renderer.
func (r *Registry) Default() (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, ErrNoRenderers
	}
	return r.byName[r.order[0]], nil
}

// Names lists renderer names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
