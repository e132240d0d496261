package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seantiz/kiln/internal/observer"
)

// Harness is the in-process target. It returns an error only when it could
// not run at all; target faults are reported through the ExitKind.
type Harness[I any] func(ctx context.Context, in I) (ExitKind, error)

var _ Executor[[]byte] = (*InProcess[[]byte])(nil)

// InProcess calls a Harness in the calling goroutine. A panic in the harness
// is reported as ExitCrash. When a run timeout is set the harness receives a
// context with that deadline and a run that outlives it is reported as
// ExitTimeout; harnesses that ignore ctx are not interrupted.
type InProcess[I any] struct {
	harness   Harness[I]
	observers observer.Observers
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an InProcess executor.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger crashes are reported to at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewInProcess creates an executor around harness observed by obs.
func NewInProcess[I any](harness Harness[I], obs observer.Observers, opts ...Option) *InProcess[I] {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &InProcess[I]{
		harness:   harness,
		observers: obs,
		timeout:   o.timeout,
		logger:    o.logger,
	}
}

// Observers returns the attached observers.
func (e *InProcess[I]) Observers() observer.Observers {
	return e.observers
}

// ResetObservers runs PreExec on every observer.
func (e *InProcess[I]) ResetObservers() error {
	return e.observers.PreExecAll()
}

// PostExecObservers runs PostExec on every observer.
func (e *InProcess[I]) PostExecObservers() error {
	return e.observers.PostExecAll()
}

// RunTarget calls the harness on in.
func (e *InProcess[I]) RunTarget(ctx context.Context, in I) (ExitKind, error) {
	if err := ctx.Err(); err != nil {
		return ExitOk, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	kind, err := e.call(runCtx, in)
	if err != nil {
		return ExitOk, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	if e.timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return ExitTimeout, nil
	}
	return kind, nil
}

func (e *InProcess[I]) call(ctx context.Context, in I) (kind ExitKind, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("target crashed", "panic", fmt.Sprint(r))
			kind, err = ExitCrash, nil
		}
	}()
	return e.harness(ctx, in)
}
