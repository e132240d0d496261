// Package stage provides the stages a Fuzzer runs on each selected entry.
package stage

import (
	"context"
	"fmt"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/fuzzer"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/mutator"
	"github.com/seantiz/kiln/internal/random"
)

const defaultMaxIterations = 128

var _ fuzzer.Stage[input.Bytes] = (*Mutational[input.Bytes])(nil)

// Mutational evaluates a number of mutated copies of the selected entry and
// keeps the interesting ones. Every kept input is announced with a
// NewTestcase event.
type Mutational[I input.Input[I]] struct {
	mutator    mutator.Mutator[I]
	iterations int
}

// Option configures a Mutational stage.
type Option func(*options)

type options struct {
	iterations int
}

// WithIterations fixes the number of mutations per Perform. Zero restores
// the random default.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// NewMutational creates a stage mutating with m.
func NewMutational[I input.Input[I]](m mutator.Mutator[I], opts ...Option) *Mutational[I] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Mutational[I]{mutator: m, iterations: o.iterations}
}

// Iterations returns how many mutations the next Perform runs: the fixed
// count if set, otherwise 1 + r.Below(128).
func (s *Mutational[I]) Iterations(r random.Rand) int {
	if s.iterations > 0 {
		return s.iterations
	}
	return 1 + int(r.Below(defaultMaxIterations))
}

// Perform loads the entry at idx and runs Iterations(r) rounds of clone,
// mutate, evaluate and add-if-interesting. An input loaded from disk is
// evicted again when Perform returns.
func (s *Mutational[I]) Perform(
	ctx context.Context,
	r random.Rand,
	st *fuzzer.State[I],
	c corpus.Corpus[I],
	eng *fuzzer.Engine[I],
	mgr events.Manager[I],
	idx int,
) (retErr error) {
	tc, err := c.Get(idx)
	if err != nil {
		return err
	}
	_, cached := tc.Input()
	in, err := tc.LoadInput()
	if err != nil {
		return err
	}
	if !cached {
		defer func() {
			if err := tc.ClearInput(); err != nil && retErr == nil {
				retErr = err
			}
		}()
	}

	n := s.Iterations(r)
	for i := 0; i < n; i++ {
		mutated, res, err := s.mutator.Mutate(r, in.Clone(), i)
		if err != nil {
			return fmt.Errorf("mutate: %w", err)
		}
		if res == mutator.Skipped {
			continue
		}

		fitness, err := st.EvaluateInput(ctx, mutated, eng.Executor())
		if err != nil {
			return err
		}
		_, added, err := st.AddIfInteresting(c, mutated.Clone(), fitness)
		if err != nil {
			return err
		}
		if !added {
			continue
		}
		if err := mgr.Fire(events.NewTestcase[I]{
			SenderID: st.SenderID(),
			Input:    mutated,
			Fitness:  fitness,
		}); err != nil {
			return fmt.Errorf("fire new testcase: %w", err)
		}
	}
	return nil
}
