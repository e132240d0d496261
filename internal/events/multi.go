package events

import (
	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
)

var _ Manager[input.Bytes] = Multi[input.Bytes](nil)

// Multi fans events out to several managers in order.
type Multi[I input.Input[I]] []Manager[I]

// Fire passes ev to every manager and returns the first error.
func (m Multi[I]) Fire(ev Event) error {
	var firstErr error
	for _, mgr := range m {
		if err := mgr.Fire(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Process runs every manager's Process and returns the summed count and the
// first error.
func (m Multi[I]) Process(st State, c corpus.Corpus[I]) (int, error) {
	var (
		total    int
		firstErr error
	)
	for _, mgr := range m {
		n, err := mgr.Process(st, c)
		total += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return total, firstErr
}
