// Package executor runs the target on one input and owns the observers that
// watch each run.
package executor

import (
	"context"
	"errors"

	"github.com/seantiz/kiln/internal/observer"
)

// ErrExecution is wrapped by every failure to run the target, as opposed to
// the target itself misbehaving, which is reported as an ExitKind.
var ErrExecution = errors.New("target execution failed")

// ExitKind is the outcome of one run of the target.
type ExitKind int

const (
	ExitOk ExitKind = iota
	ExitCrash
	ExitTimeout
	ExitOOM
)

func (k ExitKind) String() string {
	switch k {
	case ExitOk:
		return "ok"
	case ExitCrash:
		return "crash"
	case ExitTimeout:
		return "timeout"
	case ExitOOM:
		return "oom"
	default:
		return "unknown"
	}
}

// Executor runs the target and exposes the observers attached to it.
type Executor[I any] interface {
	// RunTarget executes the target once on in.
	RunTarget(ctx context.Context, in I) (ExitKind, error)
	// Observers returns the observers in their fixed order.
	Observers() observer.Observers
	// ResetObservers prepares every observer for the next run.
	ResetObservers() error
	// PostExecObservers finalizes every observer after a run.
	PostExecObservers() error
}
