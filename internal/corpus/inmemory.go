package corpus

import (
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

var _ Corpus[input.Bytes] = (*InMemory[input.Bytes])(nil)

// InMemory keeps every testcase in memory and selects uniformly at random.
type InMemory[I input.Input[I]] struct {
	entries[I]
}

// NewInMemory creates an empty in-memory corpus.
func NewInMemory[I input.Input[I]]() *InMemory[I] {
	return &InMemory[I]{}
}

// Count returns the number of entries.
func (c *InMemory[I]) Count() int {
	return c.count()
}

// Add appends tc and returns its index.
func (c *InMemory[I]) Add(tc *Testcase[I]) (int, error) {
	return c.add(tc), nil
}

// Get returns the entry at idx.
func (c *InMemory[I]) Get(idx int) (*Testcase[I], error) {
	return c.get(idx)
}

// Next returns a uniformly chosen entry.
func (c *InMemory[I]) Next(r random.Rand) (*Testcase[I], int, error) {
	if c.count() == 0 {
		return nil, 0, ErrEmpty
	}
	idx := int(r.Below(uint64(c.count())))
	return c.items[idx], idx, nil
}
