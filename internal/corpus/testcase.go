package corpus

import (
	"errors"
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/metadata"
)

// ErrNoBacking is returned when a testcase input is needed but the testcase
// holds neither an in-memory input nor a filename to load it from.
var ErrNoBacking = errors.New("testcase has no input and no filename")

// Testcase is one corpus entry: an input, its fitness and the metadata the
// feedbacks attached to it. At least one of input and filename is always set.
type Testcase[I input.Input[I]] struct {
	input    I
	hasInput bool
	filename string
	fitness  uint32
	metadata *metadata.TypeMap
	execTime *time.Duration
}

// NewTestcase returns a memory-resident testcase holding in.
func NewTestcase[I input.Input[I]](in I) *Testcase[I] {
	return &Testcase[I]{
		input:    in,
		hasInput: true,
		metadata: metadata.NewTypeMap(),
	}
}

// NewTestcaseWithFilename returns a testcase holding in that can be stored
// to and reloaded from filename.
func NewTestcaseWithFilename[I input.Input[I]](in I, filename string) *Testcase[I] {
	tc := NewTestcase(in)
	tc.filename = filename
	return tc
}

// NewTestcaseFromFile returns a disk-backed testcase whose input is loaded
// lazily from filename.
func NewTestcaseFromFile[I input.Input[I]](filename string) *Testcase[I] {
	return &Testcase[I]{
		filename: filename,
		metadata: metadata.NewTypeMap(),
	}
}

// Input returns the in-memory input, if loaded.
func (t *Testcase[I]) Input() (I, bool) {
	return t.input, t.hasInput
}

// SetInput replaces the in-memory input.
func (t *Testcase[I]) SetInput(in I) {
	t.input = in
	t.hasInput = true
}

// ClearInput drops the in-memory input of a file-backed testcase. It fails
// with ErrNoBacking when there is no filename to reload it from.
func (t *Testcase[I]) ClearInput() error {
	if t.filename == "" {
		return ErrNoBacking
	}
	var zero I
	t.input = zero
	t.hasInput = false
	return nil
}

// Filename returns the backing file name, if any.
func (t *Testcase[I]) Filename() (string, bool) {
	return t.filename, t.filename != ""
}

// SetFilename sets the backing file name.
func (t *Testcase[I]) SetFilename(name string) {
	t.filename = name
}

// Fitness returns the accumulated fitness.
func (t *Testcase[I]) Fitness() uint32 {
	return t.fitness
}

// SetFitness sets the accumulated fitness.
func (t *Testcase[I]) SetFitness(f uint32) {
	t.fitness = f
}

// ExecTime returns the measured execution time, if recorded.
func (t *Testcase[I]) ExecTime() (time.Duration, bool) {
	if t.execTime == nil {
		return 0, false
	}
	return *t.execTime, true
}

// SetExecTime records the measured execution time.
func (t *Testcase[I]) SetExecTime(d time.Duration) {
	t.execTime = &d
}

// Metadata returns the testcase metadata map.
func (t *Testcase[I]) Metadata() *metadata.TypeMap {
	return t.metadata
}

// AddMetadata stores m keyed by its type.
func (t *Testcase[I]) AddMetadata(m any) {
	t.metadata.Insert(m)
}

// LoadInput returns the input, reading it from the backing file first if it
// is not in memory. Once loaded, later calls return the cached value.
func (t *Testcase[I]) LoadInput() (I, error) {
	if t.hasInput {
		return t.input, nil
	}
	if t.filename == "" {
		var zero I
		return zero, ErrNoBacking
	}
	var zero I
	in, err := zero.FromFile(t.filename)
	if err != nil {
		return zero, fmt.Errorf("load testcase %s: %w", t.filename, err)
	}
	t.input = in
	t.hasInput = true
	return in, nil
}

// StoreInput writes the input to the backing file. It reports false without
// error when there is no filename or no in-memory input.
func (t *Testcase[I]) StoreInput() (bool, error) {
	if t.filename == "" || !t.hasInput {
		return false, nil
	}
	if err := t.input.ToFile(t.filename); err != nil {
		return false, fmt.Errorf("store testcase %s: %w", t.filename, err)
	}
	return true, nil
}
