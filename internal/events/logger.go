package events

import (
	"context"
	"log/slog"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
)

var _ Manager[input.Bytes] = (*Logger[input.Bytes])(nil)

// Logger writes every event to a structured logger.
type Logger[I input.Input[I]] struct {
	logger *slog.Logger
}

// NewLogger returns a manager logging to logger.
func NewLogger[I input.Input[I]](logger *slog.Logger) *Logger[I] {
	return &Logger[I]{logger: logger}
}

// Fire logs ev.
func (l *Logger[I]) Fire(ev Event) error {
	switch e := ev.(type) {
	case LoadInitial:
		l.logger.Debug("initial input loaded", "sender_id", e.SenderID)
	case Log:
		l.logger.Log(context.Background(), severityLevel(e.Severity), e.Message, "sender_id", e.SenderID)
	case UpdateStats:
		l.logger.Info("stats", "executions", e.Executions, "execs_per_sec", e.ExecsPerSec)
	case NewTestcase[I]:
		l.logger.Info("new testcase", "sender_id", e.SenderID, "fitness", e.Fitness)
	default:
		l.logger.Debug("event", "kind", ev.Kind())
	}
	return nil
}

// Process does nothing.
func (l *Logger[I]) Process(State, corpus.Corpus[I]) (int, error) {
	return 0, nil
}

func severityLevel(s Severity) slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
