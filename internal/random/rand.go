// Package random provides the random source threaded through corpus
// selection, generators, mutators and stages.
package random

import "math/rand/v2"

// Rand is the random source consumed by fuzzing components.
type Rand interface {
	// Next returns a uniformly distributed 64-bit value.
	Next() uint64
	// Below returns a value in [0, n). n must be greater than zero.
	Below(n uint64) uint64
	// Between returns a value in [lo, hi]. lo must not exceed hi.
	Between(lo, hi uint64) uint64
}

var _ Rand = (*StdRand)(nil)

// StdRand is a deterministic PCG-backed Rand. It is not safe for concurrent
// use; each worker owns its own.
type StdRand struct {
	r *rand.Rand
}

// NewStdRand returns a StdRand seeded with seed.
func NewStdRand(seed uint64) *StdRand {
	return &StdRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a uniformly distributed 64-bit value.
func (s *StdRand) Next() uint64 {
	return s.r.Uint64()
}

// Below returns a value in [0, n).
func (s *StdRand) Below(n uint64) uint64 {
	return s.r.Uint64N(n)
}

// Between returns a value in [lo, hi].
func (s *StdRand) Between(lo, hi uint64) uint64 {
	return lo + s.r.Uint64N(hi-lo+1)
}

// Choose returns a uniformly chosen element of items. It panics on an empty slice.
func Choose[T any](r Rand, items []T) T {
	return items[r.Below(uint64(len(items)))]
}
