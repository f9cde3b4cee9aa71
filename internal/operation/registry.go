// ABOUTME: Operation registry resolving case-insensitive names to operations
// ABOUTME: Explicit object owned by the caller; no package-level mutable state

package operation

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

// Registry maps command names (e.g. "add") to operations. Lookups also
// accept an operation's display name (e.g. "Addition") so that persisted
// records can be resolved back to their operation.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates a registry with the built-in operations registered.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Operation)}
	for name, op := range Defaults() {
		r.ops[fold(name)] = op
	}
	return r
}

// Register adds or overrides the operation stored under name.
// op must implement Operation; anything else fails with ErrInvalidOperationType.
func (r *Registry) Register(name string, op any) error {
	impl, ok := op.(Operation)
	if !ok || impl == nil {
		return fmt.Errorf("register %q (%T): %w", name, op, ErrInvalidOperationType)
	}

	r.mu.Lock()
	r.ops[fold(name)] = impl
	r.mu.Unlock()
	return nil
}

// Create resolves name to its operation. Matching is case-insensitive and
// tries command names before display names.
func (r *Registry) Create(name string) (Operation, error) {
	key := fold(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if op, ok := r.ops[key]; ok {
		return op, nil
	}
	for _, op := range r.ops {
		if fold(op.Name()) == key {
			return op, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// fold returns the case-folded form of s. A Caser keeps internal state, so a
// fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
