// Package generator produces the initial inputs of a campaign.
package generator

import (
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

// Generator produces a fresh input from r.
type Generator[I any] interface {
	Generate(r random.Rand) (I, error)
}

const (
	printableLo = 0x20
	printableHi = 0x7e
)

// RandBytes generates non-empty inputs of up to maxLen uniformly random bytes.
type RandBytes[I input.HasBytes[I]] struct {
	maxLen int
}

// NewRandBytes returns a RandBytes generator. maxLen below 1 is treated as 1.
func NewRandBytes[I input.HasBytes[I]](maxLen int) *RandBytes[I] {
	return &RandBytes[I]{maxLen: max(maxLen, 1)}
}

// Generate returns a new random input.
func (g *RandBytes[I]) Generate(r random.Rand) (I, error) {
	b := make([]byte, r.Between(1, uint64(g.maxLen)))
	for i := range b {
		b[i] = byte(r.Next())
	}
	var zero I
	return zero.WithBytes(b), nil
}

// RandPrintables generates non-empty inputs of up to maxLen printable ASCII
// characters.
type RandPrintables[I input.HasBytes[I]] struct {
	maxLen int
}

// NewRandPrintables returns a RandPrintables generator. maxLen below 1 is
// treated as 1.
func NewRandPrintables[I input.HasBytes[I]](maxLen int) *RandPrintables[I] {
	return &RandPrintables[I]{maxLen: max(maxLen, 1)}
}

// Generate returns a new printable input.
func (g *RandPrintables[I]) Generate(r random.Rand) (I, error) {
	b := make([]byte, r.Between(1, uint64(g.maxLen)))
	for i := range b {
		b[i] = byte(r.Between(printableLo, printableHi))
	}
	var zero I
	return zero.WithBytes(b), nil
}
