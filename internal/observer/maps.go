package observer

var _ Observer = (*StdMap)(nil)

// StdMap is a byte-per-edge coverage map. The target increments entries
// through Hit or writes Map directly; the map is zeroed before every run.
type StdMap struct {
	name string
	m    []byte
}

// NewStdMap returns a zeroed coverage map of size entries.
func NewStdMap(name string, size int) *StdMap {
	return &StdMap{name: name, m: make([]byte, size)}
}

// Name returns the observer name.
func (s *StdMap) Name() string {
	return s.name
}

// PreExec zeroes the map.
func (s *StdMap) PreExec() error {
	clear(s.m)
	return nil
}

// PostExec is a no-op.
func (s *StdMap) PostExec() error {
	return nil
}

// Map exposes the backing slice. Callers must not retain it across runs.
func (s *StdMap) Map() []byte {
	return s.m
}

// Len returns the number of entries.
func (s *StdMap) Len() int {
	return len(s.m)
}

// Hit increments the entry for edge, wrapping the index into the map and
// saturating the counter at 255.
func (s *StdMap) Hit(edge uint64) {
	i := edge % uint64(len(s.m))
	if s.m[i] != 0xff {
		s.m[i]++
	}
}

// Count returns the number of non-zero entries.
func (s *StdMap) Count() int {
	n := 0
	for _, b := range s.m {
		if b != 0 {
			n++
		}
	}
	return n
}
