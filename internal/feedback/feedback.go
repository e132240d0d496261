// Package feedback judges whether an execution was interesting and attaches
// what it learned to the testcases that are kept.
package feedback

import (
	"errors"
	"fmt"
	"math"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/observer"
)

// ErrObserverNotFound is returned when a feedback's observer is not attached
// to the executor.
var ErrObserverNotFound = errors.New("observer not found")

// Feedback rates one execution. State staged by IsInteresting is either
// moved into a testcase by AppendMetadata or dropped by DiscardMetadata.
type Feedback[I input.Input[I]] interface {
	Name() string
	// IsInteresting returns the fitness contribution of the last run.
	IsInteresting(in I, obs observer.Observers) (uint32, error)
	// AppendMetadata moves staged state into tc.
	AppendMetadata(tc *corpus.Testcase[I]) error
	// DiscardMetadata drops staged state for in.
	DiscardMetadata(in I) error
}

// Feedbacks is an ordered feedback list. Every operation visits every
// component in order even after a failure and returns the first error.
type Feedbacks[I input.Input[I]] []Feedback[I]

// IsInterestingAll returns the sum of all verdicts, saturating at
// math.MaxUint32.
func (f Feedbacks[I]) IsInterestingAll(in I, obs observer.Observers) (uint32, error) {
	var (
		total    uint32
		firstErr error
	)
	for _, fb := range f {
		v, err := fb.IsInteresting(in, obs)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("feedback %s: %w", fb.Name(), err)
			}
			continue
		}
		total = saturatingAdd(total, v)
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return total, nil
}

// AppendMetadataAll calls AppendMetadata on every feedback.
func (f Feedbacks[I]) AppendMetadataAll(tc *corpus.Testcase[I]) error {
	var firstErr error
	for _, fb := range f {
		if err := fb.AppendMetadata(tc); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("feedback %s: append metadata: %w", fb.Name(), err)
		}
	}
	return firstErr
}

// DiscardMetadataAll calls DiscardMetadata on every feedback.
func (f Feedbacks[I]) DiscardMetadataAll(in I) error {
	var firstErr error
	for _, fb := range f {
		if err := fb.DiscardMetadata(in); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("feedback %s: discard metadata: %w", fb.Name(), err)
		}
	}
	return firstErr
}

func saturatingAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}
