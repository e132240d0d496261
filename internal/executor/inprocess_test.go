package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seantiz/kiln/internal/observer"
)

func TestRunTargetOk(t *testing.T) {
	edges := observer.NewStdMap("edges", 8)
	exec := NewInProcess[[]byte](func(_ context.Context, in []byte) (ExitKind, error) {
		for _, b := range in {
			edges.Hit(uint64(b))
		}
		return ExitOk, nil
	}, observer.Observers{edges})

	require.NoError(t, exec.ResetObservers())
	kind, err := exec.RunTarget(context.Background(), []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, ExitOk, kind)
	require.NoError(t, exec.PostExecObservers())
	require.Equal(t, 2, edges.Count())

	require.NoError(t, exec.ResetObservers())
	require.Equal(t, 0, edges.Count())
}

func TestRunTargetPanicIsCrash(t *testing.T) {
	exec := NewInProcess[[]byte](func(_ context.Context, in []byte) (ExitKind, error) {
		_ = in[10]
		return ExitOk, nil
	}, nil)

	kind, err := exec.RunTarget(context.Background(), []byte{1})
	require.NoError(t, err)
	require.Equal(t, ExitCrash, kind)
}

func TestRunTargetTimeout(t *testing.T) {
	exec := NewInProcess[[]byte](func(ctx context.Context, _ []byte) (ExitKind, error) {
		<-ctx.Done()
		return ExitOk, nil
	}, nil, WithTimeout(10*time.Millisecond))

	kind, err := exec.RunTarget(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, ExitTimeout, kind)
}

func TestRunTargetHarnessError(t *testing.T) {
	boom := errors.New("cannot start target")
	exec := NewInProcess[[]byte](func(context.Context, []byte) (ExitKind, error) {
		return ExitOk, boom
	}, nil)

	_, err := exec.RunTarget(context.Background(), nil)
	require.ErrorIs(t, err, ErrExecution)
	require.ErrorIs(t, err, boom)
}

func TestRunTargetCancelledContext(t *testing.T) {
	called := false
	exec := NewInProcess[[]byte](func(context.Context, []byte) (ExitKind, error) {
		called = true
		return ExitOk, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.RunTarget(ctx, nil)
	require.ErrorIs(t, err, ErrExecution)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestExitKindString(t *testing.T) {
	tests := []struct {
		kind ExitKind
		want string
	}{
		{ExitOk, "ok"},
		{ExitCrash, "crash"},
		{ExitTimeout, "timeout"},
		{ExitOOM, "oom"},
		{ExitKind(42), "unknown"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.kind.String())
	}
}

func TestRunTargetCrashLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	exec := NewInProcess[[]byte](func(context.Context, []byte) (ExitKind, error) {
		panic("magic reached")
	}, nil, WithLogger(logger))

	kind, err := exec.RunTarget(context.Background(), []byte("KILN!"))
	require.NoError(t, err)
	require.Equal(t, ExitCrash, kind)

	out := buf.String()
	require.Contains(t, out, `"level":"WARN"`)
	require.Contains(t, out, `"msg":"target crashed"`)
	require.Contains(t, out, `"panic":"magic reached"`)
}
