package fuzzer

import "github.com/seantiz/kiln/internal/executor"

// Engine owns the executor of one worker.
type Engine[I any] struct {
	exec executor.Executor[I]
}

// NewEngine wraps exec.
func NewEngine[I any](exec executor.Executor[I]) *Engine[I] {
	return &Engine[I]{exec: exec}
}

// Executor returns the owned executor.
func (e *Engine[I]) Executor() executor.Executor[I] {
	return e.exec
}
