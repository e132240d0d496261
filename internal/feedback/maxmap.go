package feedback

import (
	"fmt"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/metadata"
	"github.com/seantiz/kiln/internal/observer"
)

func init() {
	metadata.Register[MapNovelties]("map_novelties")
}

// MapNovelties lists the coverage map indexes a testcase reached with a new
// maximum.
type MapNovelties struct {
	Indexes []int `msgpack:"indexes"`
}

var _ Feedback[input.Bytes] = (*MaxMap[input.Bytes])(nil)

// MaxMap keeps the per-entry maximum seen in a StdMap observer and rates a
// run interesting when any entry exceeds it.
type MaxMap[I input.Input[I]] struct {
	observerName string
	history      []byte
	novelties    []int
}

// NewMaxMap tracks the StdMap observer called observerName.
func NewMaxMap[I input.Input[I]](observerName string) *MaxMap[I] {
	return &MaxMap[I]{observerName: observerName}
}

// Name returns the feedback name.
func (f *MaxMap[I]) Name() string {
	return "max_map:" + f.observerName
}

// IsInteresting returns 1 if the run raised any map entry above its
// historical maximum, updating the history.
func (f *MaxMap[I]) IsInteresting(_ I, obs observer.Observers) (uint32, error) {
	m, ok := observer.Match[*observer.StdMap](obs, f.observerName)
	if !ok {
		return 0, fmt.Errorf("%s: %w", f.observerName, ErrObserverNotFound)
	}
	cur := m.Map()
	if f.history == nil {
		f.history = make([]byte, len(cur))
	}

	f.novelties = f.novelties[:0]
	for i, v := range cur {
		if v > f.history[i] {
			f.history[i] = v
			f.novelties = append(f.novelties, i)
		}
	}
	if len(f.novelties) == 0 {
		return 0, nil
	}
	return 1, nil
}

// AppendMetadata attaches the novelties of the last run to tc.
func (f *MaxMap[I]) AppendMetadata(tc *corpus.Testcase[I]) error {
	idx := make([]int, len(f.novelties))
	copy(idx, f.novelties)
	tc.AddMetadata(MapNovelties{Indexes: idx})
	f.novelties = f.novelties[:0]
	return nil
}

// DiscardMetadata forgets the novelties of the last run.
func (f *MaxMap[I]) DiscardMetadata(I) error {
	f.novelties = f.novelties[:0]
	return nil
}

// Covered returns the number of map entries ever hit.
func (f *MaxMap[I]) Covered() int {
	n := 0
	for _, v := range f.history {
		if v != 0 {
			n++
		}
	}
	return n
}
