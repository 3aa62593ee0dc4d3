package strategy

import (
	"sort"
	"sync"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

// Factory builds a strategy instance. The registry invokes it on every
// Get, so each caller owns its instance exclusively and a batch scan can
// never touch the state of a strategy driving a live run.
type Factory func() Strategy

// Registry holds the strategy factories available for selection by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the name of the strategy it builds,
// replacing any previous entry with the same name.
func (r *Registry) Register(f Factory) {
	name := f().Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get builds a fresh strategy instance by name. Unknown names fail with
// ErrStrategyNotFound.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrStrategyNotFound
	}
	return f(), nil
}

// Has reports whether a strategy is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns all registered strategy names, sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
