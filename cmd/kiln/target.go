package main

import (
	"context"

	"github.com/seantiz/kiln/internal/executor"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/observer"
)

const edgesMapSize = 1 << 10

// magic is the input prefix the demo target crashes on. Each additional
// matching byte reaches a new edge, so coverage guidance can find it.
var magic = []byte("KILN!")

// demoTarget returns the built-in harness. It records one edge per matched
// magic byte and one per input length class, and panics once the whole
// magic prefix matches.
func demoTarget(edges *observer.StdMap) executor.Harness[input.Bytes] {
	return func(_ context.Context, in input.Bytes) (executor.ExitKind, error) {
		b := in.Bytes()
		edges.Hit(uint64(512 + len(b)%64))

		matched := 0
		for matched < len(magic) && matched < len(b) && b[matched] == magic[matched] {
			matched++
			edges.Hit(uint64(matched))
		}
		if matched == len(magic) {
			panic("demo target: magic prefix reached")
		}
		return executor.ExitOk, nil
	}
}
