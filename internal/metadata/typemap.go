package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// persistable maps wire names to types for TypeMap persistence.
var persistable = struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}{
	byName: make(map[string]reflect.Type),
	byType: make(map[reflect.Type]string),
}

// Register makes values of type T persist under name when a TypeMap is
// encoded. It panics if name or T is already registered differently.
func Register[T any](name string) {
	t := reflect.TypeFor[T]()

	persistable.mu.Lock()
	defer persistable.mu.Unlock()

	if prev, ok := persistable.byName[name]; ok && prev != t {
		panic(fmt.Sprintf("metadata: name %q already registered for %v", name, prev))
	}
	if prev, ok := persistable.byType[t]; ok && prev != name {
		panic(fmt.Sprintf("metadata: type %v already registered as %q", t, prev))
	}
	persistable.byName[name] = t
	persistable.byType[t] = name
}

var (
	_ msgpack.Marshaler   = (*TypeMap)(nil)
	_ msgpack.Unmarshaler = (*TypeMap)(nil)
)

// TypeMap holds at most one value per dynamic type.
type TypeMap struct {
	entries map[reflect.Type]any
}

// NewTypeMap creates an empty map.
func NewTypeMap() *TypeMap {
	return &TypeMap{entries: make(map[reflect.Type]any)}
}

// Insert stores v keyed by its dynamic type, replacing a previous value of
// the same type. A nil v is ignored.
func (m *TypeMap) Insert(v any) {
	if v == nil {
		return
	}
	m.entries[reflect.TypeOf(v)] = v
}

// Len returns the number of entries.
func (m *TypeMap) Len() int {
	return len(m.entries)
}

// Get returns the value of type T stored in m.
func Get[T any](m *TypeMap) (T, bool) {
	var zero T
	v, ok := m.entries[reflect.TypeFor[T]()]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Has reports whether m holds a value of type T.
func Has[T any](m *TypeMap) bool {
	_, ok := m.entries[reflect.TypeFor[T]()]
	return ok
}

// MarshalMsgpack encodes the registered entries as a map from wire name to
// the msgpack encoding of the value.
func (m *TypeMap) MarshalMsgpack() ([]byte, error) {
	persistable.mu.RLock()
	defer persistable.mu.RUnlock()

	out := make(map[string]msgpack.RawMessage, len(m.entries))
	for t, v := range m.entries {
		name, ok := persistable.byType[t]
		if !ok {
			continue
		}
		raw, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode metadata %q: %w", name, err)
		}
		out[name] = raw
	}
	return msgpack.Marshal(out)
}

// UnmarshalMsgpack decodes entries produced by MarshalMsgpack into m. Names
// that are not registered in this process are skipped.
func (m *TypeMap) UnmarshalMsgpack(b []byte) error {
	var in map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("decode metadata map: %w", err)
	}

	persistable.mu.RLock()
	defer persistable.mu.RUnlock()

	if m.entries == nil {
		m.entries = make(map[reflect.Type]any, len(in))
	}
	for name, raw := range in {
		t, ok := persistable.byName[name]
		if !ok {
			continue
		}
		ptr := reflect.New(t)
		if err := msgpack.Unmarshal(raw, ptr.Interface()); err != nil {
			return fmt.Errorf("decode metadata %q: %w", name, err)
		}
		m.entries[t] = ptr.Elem().Interface()
	}
	return nil
}
