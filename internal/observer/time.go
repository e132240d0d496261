package observer

import "time"

var _ Observer = (*Time)(nil)

// Time measures the wall-clock duration of a run.
type Time struct {
	name  string
	now   func() time.Time
	start time.Time
	last  time.Duration
	valid bool
}

// NewTime returns a Time observer called name.
func NewTime(name string) *Time {
	return &Time{name: name, now: time.Now}
}

// Name returns the observer name.
func (t *Time) Name() string {
	return t.name
}

// PreExec records the start of the run.
func (t *Time) PreExec() error {
	t.start = t.now()
	t.valid = false
	return nil
}

// PostExec records the duration since PreExec.
func (t *Time) PostExec() error {
	t.last = t.now().Sub(t.start)
	t.valid = true
	return nil
}

// LastRuntime returns the duration of the last completed run.
func (t *Time) LastRuntime() (time.Duration, bool) {
	return t.last, t.valid
}
