package corpus

import (
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

var _ Corpus[input.Bytes] = (*Queue[input.Bytes])(nil)

// Queue keeps testcases in memory and selects them in insertion order,
// wrapping around at the end. Each wrap counts as one cycle.
type Queue[I input.Input[I]] struct {
	entries[I]
	pos    int
	cycles int
}

// NewQueue creates an empty queue corpus.
func NewQueue[I input.Input[I]]() *Queue[I] {
	return &Queue[I]{}
}

// Count returns the number of entries.
func (c *Queue[I]) Count() int {
	return c.count()
}

// Add appends tc and returns its index.
func (c *Queue[I]) Add(tc *Testcase[I]) (int, error) {
	return c.add(tc), nil
}

// Get returns the entry at idx.
func (c *Queue[I]) Get(idx int) (*Testcase[I], error) {
	return c.get(idx)
}

// Next returns the entry after the previously selected one. The random
// source is not consulted.
func (c *Queue[I]) Next(_ random.Rand) (*Testcase[I], int, error) {
	if c.count() == 0 {
		return nil, 0, ErrEmpty
	}
	if c.pos >= c.count() {
		c.pos = 0
		c.cycles++
	}
	idx := c.pos
	c.pos++
	return c.items[idx], idx, nil
}

// Cycles returns how many times selection wrapped around the queue.
func (c *Queue[I]) Cycles() int {
	return c.cycles
}
