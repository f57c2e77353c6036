package condition

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds a condition from its options, validating them eagerly.
type Constructor func(options Options) (Condition, error)

// Registry maps condition names to constructors so definitions can refer to
// condition variants by name. NewRegistry pre-registers the built-in variants.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry with exact-match, not-empty and range
// registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.MustRegister(NameExactMatch, func(o Options) (Condition, error) { return NewExactMatch(o) })
	r.MustRegister(NameNotEmpty, func(o Options) (Condition, error) { return NewNotEmpty(o) })
	r.MustRegister(NameRange, func(o Options) (Condition, error) { return NewRange(o) })
	return r
}

// Register adds a constructor. Duplicate names return an error.
func (r *Registry) Register(name string, ctor Constructor) error {
	name = normalize(name)
	if name == "" {
		return fmt.Errorf("condition: name is required")
	}
	if ctor == nil {
		return fmt.Errorf("condition: constructor for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return fmt.Errorf("condition: %q already registered", name)
	}
	r.constructors[name] = ctor
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Build constructs the named condition. Option validation errors from the
// constructor are returned unchanged so callers can test for
// ErrMissingOption.
func (r *Registry) Build(name string, options Options) (Condition, error) {
	key := normalize(name)

	r.mu.RLock()
	ctor, ok := r.constructors[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCondition, name)
	}
	return ctor(options.clone())
}

// Has reports whether a condition name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.constructors[normalize(name)]
	return ok
}

// List returns the sorted registered names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
