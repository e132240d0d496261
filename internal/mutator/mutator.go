// Package mutator derives new inputs from corpus entries.
package mutator

import (
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

// Result reports whether a mutation changed its input.
type Result int

const (
	Mutated Result = iota
	Skipped
)

func (r Result) String() string {
	if r == Mutated {
		return "mutated"
	}
	return "skipped"
}

// Mutator produces a mutated copy of in. stageIdx is the iteration of the
// calling stage.
type Mutator[I any] interface {
	Mutate(r random.Rand, in I, stageIdx int) (I, Result, error)
}

// Mutation rewrites b in place or returns a resized buffer. Inputs must not
// grow beyond maxLen.
type Mutation func(r random.Rand, b []byte, maxLen int) ([]byte, Result)

const defaultMaxLen = 4096

var _ Mutator[input.Bytes] = (*Scheduled[input.Bytes])(nil)

// Scheduled applies a random stack of mutations drawn from a fixed set.
type Scheduled[I input.HasBytes[I]] struct {
	mutations []Mutation
	maxLen    int
}

// ScheduledOption configures a Scheduled mutator.
type ScheduledOption func(*scheduledOptions)

type scheduledOptions struct {
	maxLen int
}

// WithMaxLen bounds the length of mutated inputs.
func WithMaxLen(n int) ScheduledOption {
	return func(o *scheduledOptions) {
		o.maxLen = n
	}
}

// NewScheduled creates a Scheduled mutator over mutations. An empty set
// falls back to every built-in byte mutation.
func NewScheduled[I input.HasBytes[I]](mutations []Mutation, opts ...ScheduledOption) *Scheduled[I] {
	o := scheduledOptions{maxLen: defaultMaxLen}
	for _, opt := range opts {
		opt(&o)
	}
	if len(mutations) == 0 {
		mutations = ByteMutations()
	}
	return &Scheduled[I]{mutations: mutations, maxLen: max(o.maxLen, 1)}
}

// Iterations returns the stack depth for one Mutate call, a power of two
// between 2 and 64.
func (s *Scheduled[I]) Iterations(r random.Rand) int {
	return 1 << (1 + r.Below(6))
}

// Mutate copies the bytes of in and applies Iterations(r) randomly chosen
// mutations to the copy. It reports Skipped only if none of them applied.
func (s *Scheduled[I]) Mutate(r random.Rand, in I, _ int) (I, Result, error) {
	buf := append([]byte(nil), in.Bytes()...)
	res := Skipped
	n := s.Iterations(r)
	for i := 0; i < n; i++ {
		m := random.Choose(r, s.mutations)
		var out Result
		buf, out = m(r, buf, s.maxLen)
		if out == Mutated {
			res = Mutated
		}
	}
	return in.WithBytes(buf), res, nil
}
