package fuzzer

import (
	"context"
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/executor"
	"github.com/seantiz/kiln/internal/feedback"
	"github.com/seantiz/kiln/internal/generator"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/metadata"
	"github.com/seantiz/kiln/internal/random"
)

var _ events.State = (*State[input.Bytes])(nil)

// State is the bookkeeping of one worker: the execution counter, the named
// metadata registry and the feedbacks that score every run.
type State[I input.Input[I]] struct {
	executions uint64
	startTime  time.Time
	now        func() time.Time
	senderID   int
	metadatas  *metadata.Registry
	feedbacks  feedback.Feedbacks[I]
}

// StateOption configures a State.
type StateOption func(*stateOptions)

type stateOptions struct {
	now      func() time.Time
	senderID int
}

// WithStateClock replaces the wall clock used for the start time and
// throughput.
func WithStateClock(now func() time.Time) StateOption {
	return func(o *stateOptions) {
		o.now = now
	}
}

// WithSenderID sets the worker id stamped on fired events.
func WithSenderID(id int) StateOption {
	return func(o *stateOptions) {
		o.senderID = id
	}
}

// NewState creates a State owning fbs. The start time is fixed here.
func NewState[I input.Input[I]](fbs feedback.Feedbacks[I], opts ...StateOption) *State[I] {
	o := stateOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &State[I]{
		startTime: o.now(),
		now:       o.now,
		senderID:  o.senderID,
		metadatas: metadata.NewRegistry(),
		feedbacks: fbs,
	}
}

// Executions returns the number of completed target runs.
func (s *State[I]) Executions() uint64 {
	return s.executions
}

// SetExecutions overrides the execution counter, e.g. when resuming.
func (s *State[I]) SetExecutions(n uint64) {
	s.executions = n
}

// StartTime returns the construction time.
func (s *State[I]) StartTime() time.Time {
	return s.startTime
}

// SenderID returns the worker id stamped on fired events.
func (s *State[I]) SenderID() int {
	return s.senderID
}

// ExecutionsOverSeconds returns executions per whole elapsed second, or 0
// before the first second has elapsed.
func (s *State[I]) ExecutionsOverSeconds() uint64 {
	secs := int64(s.now().Sub(s.startTime) / time.Second)
	if secs <= 0 {
		return 0
	}
	return s.executions / uint64(secs)
}

// AddMetadata stores m under its name, replacing any previous value.
func (s *State[I]) AddMetadata(m metadata.Metadata) {
	s.metadatas.Insert(m)
}

// Metadata returns the metadata stored under name.
func (s *State[I]) Metadata(name string) (metadata.Metadata, bool) {
	return s.metadatas.Get(name)
}

// Metadatas returns the metadata registry.
func (s *State[I]) Metadatas() *metadata.Registry {
	return s.metadatas
}

// Feedbacks returns the owned feedbacks.
func (s *State[I]) Feedbacks() feedback.Feedbacks[I] {
	return s.feedbacks
}

// EvaluateInput runs the target once on in and returns the combined fitness
// of the run. The execution counter is incremented once the target has run,
// even if observer finalization or scoring then fails. The corpus is never
// touched.
func (s *State[I]) EvaluateInput(ctx context.Context, in I, exec executor.Executor[I]) (uint32, error) {
	if err := exec.ResetObservers(); err != nil {
		return 0, fmt.Errorf("reset observers: %w", err)
	}
	if _, err := exec.RunTarget(ctx, in); err != nil {
		return 0, err
	}
	s.executions++

	if err := exec.PostExecObservers(); err != nil {
		return 0, fmt.Errorf("post-exec observers: %w", err)
	}
	return s.feedbacks.IsInterestingAll(in, exec.Observers())
}

// DiscardInput drops the metadata the feedbacks staged for in.
func (s *State[I]) DiscardInput(in I) error {
	return s.feedbacks.DiscardMetadataAll(in)
}

// InputToTestcase builds a testcase for in with the given fitness and lets
// every feedback attach its staged metadata.
func (s *State[I]) InputToTestcase(in I, fitness uint32) (*corpus.Testcase[I], error) {
	tc := corpus.NewTestcase(in)
	tc.SetFitness(fitness)
	if err := s.feedbacks.AppendMetadataAll(tc); err != nil {
		return nil, err
	}
	return tc, nil
}

// TestcaseIfInteresting returns a testcase for in when fitness is positive.
// Otherwise it discards the staged metadata and returns nil.
func (s *State[I]) TestcaseIfInteresting(in I, fitness uint32) (*corpus.Testcase[I], error) {
	if fitness == 0 {
		return nil, s.DiscardInput(in)
	}
	return s.InputToTestcase(in, fitness)
}

// AddIfInteresting adds in to c when fitness is positive and returns its
// index. added is false when the input was discarded.
func (s *State[I]) AddIfInteresting(c corpus.Corpus[I], in I, fitness uint32) (idx int, added bool, err error) {
	tc, err := s.TestcaseIfInteresting(in, fitness)
	if err != nil || tc == nil {
		return 0, false, err
	}
	idx, err = c.Add(tc)
	if err != nil {
		return 0, false, fmt.Errorf("add testcase: %w", err)
	}
	return idx, true, nil
}

// GenerateInitialInputs runs num rounds of generate, evaluate and
// add-if-interesting, firing one LoadInitial event per generated input and
// a summary Log event, then processes pending events. It returns how many
// inputs were kept; the corpus may still be empty afterwards.
func (s *State[I]) GenerateInitialInputs(
	ctx context.Context,
	r random.Rand,
	c corpus.Corpus[I],
	gen generator.Generator[I],
	eng *Engine[I],
	mgr events.Manager[I],
	num int,
) (int, error) {
	added := 0
	for i := 0; i < num; i++ {
		in, err := gen.Generate(r)
		if err != nil {
			return added, fmt.Errorf("generate initial input: %w", err)
		}
		fitness, err := s.EvaluateInput(ctx, in, eng.Executor())
		if err != nil {
			return added, err
		}
		_, ok, err := s.AddIfInteresting(c, in, fitness)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
		if err := mgr.Fire(events.LoadInitial{SenderID: s.senderID}); err != nil {
			return added, fmt.Errorf("fire load initial: %w", err)
		}
	}

	if err := mgr.Fire(events.Log{
		SenderID: s.senderID,
		Severity: events.SeverityInfo,
		Message:  fmt.Sprintf("Loaded %d over %d initial testcases", added, num),
	}); err != nil {
		return added, fmt.Errorf("fire log: %w", err)
	}
	if _, err := mgr.Process(s, c); err != nil {
		return added, fmt.Errorf("process events: %w", err)
	}
	return added, nil
}
