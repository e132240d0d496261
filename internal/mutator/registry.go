package mutator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownMutation is returned when resolving a name nothing registered.
var ErrUnknownMutation = errors.New("unknown mutation")

var builtin = []struct {
	name string
	fn   Mutation
}{
	{"bitflip", BitFlip},
	{"byteflip", ByteFlip},
	{"byteinc", ByteInc},
	{"bytedec", ByteDec},
	{"byteneg", ByteNeg},
	{"byterand", ByteRand},
	{"bytedelete", ByteDelete},
	{"byteinsert", ByteInsert},
}

// ByteMutations returns every built-in byte mutation.
func ByteMutations() []Mutation {
	out := make([]Mutation, len(builtin))
	for i, b := range builtin {
		out[i] = b.fn
	}
	return out
}

// Registry maps configuration names to mutations. It is safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	mutations map[string]Mutation
}

// NewRegistry creates an empty mutation registry.
func NewRegistry() *Registry {
	return &Registry{mutations: make(map[string]Mutation)}
}

// DefaultRegistry returns a registry holding the built-in byte mutations.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range builtin {
		r.Register(b.name, b.fn)
	}
	return r
}

// Register adds m under name, replacing any previous entry.
func (r *Registry) Register(name string, m Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations[name] = m
}

// Resolve returns the mutations for names in order. An empty names list
// resolves to every registered mutation in name order.
func (r *Registry) Resolve(names []string) ([]Mutation, error) {
	if len(names) == 0 {
		names = r.List()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Mutation, 0, len(names))
	for _, name := range names {
		m, ok := r.mutations[name]
		if !ok {
			return nil, fmt.Errorf("mutation %q: %w", name, ErrUnknownMutation)
		}
		out = append(out, m)
	}
	return out, nil
}

// List returns the registered names, sorted for stable output.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.mutations))
	for name := range r.mutations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
