package corpus

import (
	"errors"
	"fmt"

	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

// ErrEmpty is returned when selecting from a corpus with no entries.
var ErrEmpty = errors.New("corpus is empty")

// ErrIndexOutOfRange is returned by Get for an index no entry was added under.
var ErrIndexOutOfRange = errors.New("corpus index out of range")

// Corpus is an indexed collection of testcases with a selection policy.
// Indexes returned by Add are stable for the lifetime of the corpus.
type Corpus[I input.Input[I]] interface {
	// Count returns the number of entries.
	Count() int
	// Add takes ownership of tc and returns its index.
	Add(tc *Testcase[I]) (int, error)
	// Get returns the entry at idx.
	Get(idx int) (*Testcase[I], error)
	// Next selects an entry according to the corpus policy. It returns
	// ErrEmpty if there are no entries.
	Next(r random.Rand) (*Testcase[I], int, error)
}

// entries is the slice-backed storage shared by the bundled corpora.
type entries[I input.Input[I]] struct {
	items []*Testcase[I]
}

func (e *entries[I]) count() int {
	return len(e.items)
}

func (e *entries[I]) add(tc *Testcase[I]) int {
	e.items = append(e.items, tc)
	return len(e.items) - 1
}

func (e *entries[I]) get(idx int) (*Testcase[I], error) {
	if idx < 0 || idx >= len(e.items) {
		return nil, fmt.Errorf("get %d of %d: %w", idx, len(e.items), ErrIndexOutOfRange)
	}
	return e.items[idx], nil
}
