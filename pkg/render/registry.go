package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Constructor produces a renderer instance for one node.
type Constructor[R any] func() R

// Registry maps kind identifiers to renderer constructors. It is normally
// populated once at startup; later registrations (plugins) are serialised by
// a writer lock and published as a new immutable snapshot, so lookups never
// take a lock.
type Registry[R any] struct {
	category string

	mu    sync.Mutex
	table atomic.Pointer[map[string]Constructor[R]]
}

// NewRegistry creates an empty registry. The category names the registry in
// errors and logs.
func NewRegistry[R any](category string) *Registry[R] {
	r := &Registry[R]{category: category}
	empty := make(map[string]Constructor[R])
	r.table.Store(&empty)
	return r
}

// Category returns the name given at construction.
func (r *Registry[R]) Category() string { return r.category }

// Register adds a constructor. Each kind resolves to exactly one renderer,
// so registering a kind twice returns ErrDuplicateKind; use Replace to
// override deliberately.
func (r *Registry[R]) Register(kind string, ctor Constructor[R]) error {
	return r.store(kind, ctor, false)
}

// Replace registers ctor, overriding any existing constructor for kind.
func (r *Registry[R]) Replace(kind string, ctor Constructor[R]) error {
	return r.store(kind, ctor, true)
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry[R]) MustRegister(kind string, ctor Constructor[R]) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

func (r *Registry[R]) store(kind string, ctor Constructor[R], replace bool) error {
	key := normalizeKind(kind)
	if key == "" {
		return fmt.Errorf("%w (%s)", ErrKindRequired, r.category)
	}
	if ctor == nil {
		return fmt.Errorf("%w: %s kind %q", ErrNilConstructor, r.category, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.table.Load()
	if _, exists := current[key]; exists && !replace {
		return fmt.Errorf("%w: %s kind %q", ErrDuplicateKind, r.category, key)
	}
	next := make(map[string]Constructor[R], len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = ctor
	r.table.Store(&next)
	return nil
}

// Deregister removes kind and reports whether it was registered.
func (r *Registry[R]) Deregister(kind string) bool {
	key := normalizeKind(kind)

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.table.Load()
	if _, exists := current[key]; !exists {
		return false
	}
	next := make(map[string]Constructor[R], len(current))
	for k, v := range current {
		if k != key {
			next[k] = v
		}
	}
	r.table.Store(&next)
	return true
}

// Resolve instantiates the renderer registered for kind. Unknown kinds yield
// an *UnsupportedTypeError.
func (r *Registry[R]) Resolve(kind string) (R, error) {
	var zero R
	ctor, ok := (*r.table.Load())[normalizeKind(kind)]
	if !ok {
		return zero, &UnsupportedTypeError{Category: r.category, Kind: kind}
	}
	renderer := ctor()
	if any(renderer) == nil {
		return zero, fmt.Errorf("render: %s constructor for kind %q returned nil", r.category, kind)
	}
	return renderer, nil
}

// Has reports whether kind is registered.
func (r *Registry[R]) Has(kind string) bool {
	_, ok := (*r.table.Load())[normalizeKind(kind)]
	return ok
}

// Kinds returns the sorted registered kinds.
func (r *Registry[R]) Kinds() []string {
	table := *r.table.Load()
	kinds := make([]string, 0, len(table))
	for kind := range table {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
