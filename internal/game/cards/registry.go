package cards

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// Constructor builds the definition of a card. Definitions are immutable
// once built and are shared by every copy of the card in every state.
type Constructor func() *state.CardDef

// Registry maps card names to constructors. Cards are registered
// explicitly; lookups memoize the built definition so all copies of a card
// share one *state.CardDef.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	defs         map[string]*state.CardDef
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		defs:         make(map[string]*state.CardDef),
	}
}

// Register adds a card under name. Registering the same name twice is an
// error.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("register card %q: name and constructor are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("register card %q: already registered", name)
	}
	r.constructors[name] = ctor
	return nil
}

// MustRegister is Register for package initialisation.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the shared definition for name.
func (r *Registry) Lookup(name string) (*state.CardDef, error) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if def, ok := r.defs[name]; ok {
		return def, nil
	}
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, core.ErrUnknownCard)
	}
	def = ctor()
	r.defs[name] = def
	return def, nil
}

// Names lists the registered card names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the registry holding the basic card set.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		RegisterBasicCards(defaultRegistry)
	})
	return defaultRegistry
}
