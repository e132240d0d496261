package feedback

import (
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/observer"
)

var _ Feedback[input.Bytes] = (*Time[input.Bytes])(nil)

// Time never rates a run interesting. It records the duration measured by a
// Time observer on the testcases other feedbacks keep.
type Time[I input.Input[I]] struct {
	observerName string
	last         *time.Duration
}

// NewTime reads the Time observer called observerName.
func NewTime[I input.Input[I]](observerName string) *Time[I] {
	return &Time[I]{observerName: observerName}
}

// Name returns the feedback name.
func (f *Time[I]) Name() string {
	return "time:" + f.observerName
}

// IsInteresting stages the last runtime and returns 0.
func (f *Time[I]) IsInteresting(_ I, obs observer.Observers) (uint32, error) {
	t, ok := observer.Match[*observer.Time](obs, f.observerName)
	if !ok {
		return 0, fmt.Errorf("%s: %w", f.observerName, ErrObserverNotFound)
	}
	f.last = nil
	if d, ok := t.LastRuntime(); ok {
		f.last = &d
	}
	return 0, nil
}

// AppendMetadata sets the execution time of tc.
func (f *Time[I]) AppendMetadata(tc *corpus.Testcase[I]) error {
	if f.last != nil {
		tc.SetExecTime(*f.last)
	}
	f.last = nil
	return nil
}

// DiscardMetadata drops the staged runtime.
func (f *Time[I]) DiscardMetadata(I) error {
	f.last = nil
	return nil
}
