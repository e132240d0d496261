package fuzzer

import (
	"context"
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

// DefaultStatsInterval is the heartbeat period of FuzzLoop.
const DefaultStatsInterval = 6 * time.Second

// Stage is one step applied to the selected corpus entry.
type Stage[I input.Input[I]] interface {
	Perform(
		ctx context.Context,
		r random.Rand,
		st *State[I],
		c corpus.Corpus[I],
		eng *Engine[I],
		mgr events.Manager[I],
		idx int,
	) error
}

// Fuzzer runs an ordered list of stages over corpus entries.
type Fuzzer[I input.Input[I]] interface {
	Stages() []Stage[I]
	AddStage(s Stage[I])
	// FuzzOne selects an entry, runs every stage on it, processes pending
	// events and returns the selected index.
	FuzzOne(ctx context.Context, r random.Rand, st *State[I], c corpus.Corpus[I], eng *Engine[I], mgr events.Manager[I]) (int, error)
	// FuzzLoop repeats FuzzOne and fires periodic stats until ctx is
	// cancelled or an iteration fails.
	FuzzLoop(ctx context.Context, r random.Rand, st *State[I], c corpus.Corpus[I], eng *Engine[I], mgr events.Manager[I]) error
}

var _ Fuzzer[input.Bytes] = (*StdFuzzer[input.Bytes])(nil)

// StdFuzzer is the default Fuzzer.
type StdFuzzer[I input.Input[I]] struct {
	stages        []Stage[I]
	statsInterval time.Duration
	now           func() time.Time
}

// Option configures a StdFuzzer.
type Option func(*options)

type options struct {
	statsInterval time.Duration
	now           func() time.Time
}

// WithStatsInterval sets the heartbeat period. Non-positive values keep the
// default.
func WithStatsInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.statsInterval = d
		}
	}
}

// WithClock replaces the wall clock used for the heartbeat.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewStdFuzzer creates a fuzzer running stages in order.
func NewStdFuzzer[I input.Input[I]](stages []Stage[I], opts ...Option) *StdFuzzer[I] {
	o := options{statsInterval: DefaultStatsInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &StdFuzzer[I]{
		stages:        stages,
		statsInterval: o.statsInterval,
		now:           o.now,
	}
}

// Stages returns the configured stages.
func (f *StdFuzzer[I]) Stages() []Stage[I] {
	return f.stages
}

// AddStage appends s to the stage list.
func (f *StdFuzzer[I]) AddStage(s Stage[I]) {
	f.stages = append(f.stages, s)
}

// FuzzOne runs one iteration. The first stage failure aborts the iteration
// and skips event processing.
func (f *StdFuzzer[I]) FuzzOne(ctx context.Context, r random.Rand, st *State[I], c corpus.Corpus[I], eng *Engine[I], mgr events.Manager[I]) (int, error) {
	_, idx, err := c.Next(r)
	if err != nil {
		return 0, fmt.Errorf("select testcase: %w", err)
	}
	for i, s := range f.stages {
		if err := s.Perform(ctx, r, st, c, eng, mgr, idx); err != nil {
			return idx, fmt.Errorf("stage %d on testcase %d: %w", i, idx, err)
		}
	}
	if _, err := mgr.Process(st, c); err != nil {
		return idx, fmt.Errorf("process events: %w", err)
	}
	return idx, nil
}

// FuzzLoop runs FuzzOne until ctx is cancelled, returning ctx.Err(), or
// until an iteration fails, returning its error. Whenever more than the
// stats interval has passed since the last report it fires UpdateStats.
func (f *StdFuzzer[I]) FuzzLoop(ctx context.Context, r random.Rand, st *State[I], c corpus.Corpus[I], eng *Engine[I], mgr events.Manager[I]) error {
	last := f.now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.FuzzOne(ctx, r, st, c, eng, mgr); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		now := f.now()
		if now.Sub(last) > f.statsInterval {
			if err := mgr.Fire(events.UpdateStats{
				Executions:  st.Executions(),
				ExecsPerSec: st.ExecutionsOverSeconds(),
			}); err != nil {
				return fmt.Errorf("fire stats: %w", err)
			}
			last = now
		}
	}
}
