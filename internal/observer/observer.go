package observer

import "fmt"

// Observer captures one aspect of a single target execution.
type Observer interface {
	// Name identifies the observer to feedbacks. Names are unique within an
	// Observers list.
	Name() string
	// PreExec resets the observer before a run.
	PreExec() error
	// PostExec finalizes the observation after a run.
	PostExec() error
}

// Observers is an ordered observer list owned by an executor.
type Observers []Observer

// PreExecAll calls PreExec on every observer in order, stopping at the first
// failure.
func (o Observers) PreExecAll() error {
	for _, ob := range o {
		if err := ob.PreExec(); err != nil {
			return fmt.Errorf("pre-exec %s: %w", ob.Name(), err)
		}
	}
	return nil
}

// PostExecAll calls PostExec on every observer in order, stopping at the first
// failure.
func (o Observers) PostExecAll() error {
	for _, ob := range o {
		if err := ob.PostExec(); err != nil {
			return fmt.Errorf("post-exec %s: %w", ob.Name(), err)
		}
	}
	return nil
}

// Match returns the observer called name if it has type T.
func Match[T Observer](obs Observers, name string) (T, bool) {
	var zero T
	for _, ob := range obs {
		if ob.Name() != name {
			continue
		}
		v, ok := ob.(T)
		return v, ok
	}
	return zero, false
}
