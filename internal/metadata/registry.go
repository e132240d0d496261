package metadata

import "sort"

// Metadata is a named run-wide fact stored in a Registry.
type Metadata interface {
	// Name is the registry key. It must be constant for a given type.
	Name() string
}

// Registry maps names to metadata. Inserting under an existing name replaces
// the previous value. A Registry is owned by a single State and is not safe
// for concurrent use.
type Registry struct {
	entries map[string]Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Metadata)}
}

// Insert stores m under m.Name(), replacing any previous entry.
func (r *Registry) Insert(m Metadata) {
	r.entries[m.Name()] = m
}

// Get returns the metadata stored under name.
func (r *Registry) Get(name string) (Metadata, bool) {
	m, ok := r.entries[name]
	return m, ok
}

// Remove deletes the entry under name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry under name if it exists and has type T.
func Lookup[T Metadata](r *Registry, name string) (T, bool) {
	var zero T
	m, ok := r.entries[name]
	if !ok {
		return zero, false
	}
	v, ok := m.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
