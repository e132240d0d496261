package events

import (
	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/model"
)

// Event is a notification fired by a worker.
type Event interface {
	// Kind is one of the model.Event* constants.
	Kind() string
}

// Severity grades a Log event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoadInitial is fired once per generated initial input.
type LoadInitial struct {
	SenderID int `json:"sender_id"`
}

// Kind returns model.EventLoadInitial.
func (LoadInitial) Kind() string { return model.EventLoadInitial }

// Log is a free-form message.
type Log struct {
	SenderID int      `json:"sender_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Kind returns model.EventLog.
func (Log) Kind() string { return model.EventLog }

// UpdateStats is the periodic heartbeat of a fuzz loop.
type UpdateStats struct {
	Executions  uint64 `json:"executions"`
	ExecsPerSec uint64 `json:"execs_per_sec"`
}

// Kind returns model.EventUpdateStats.
func (UpdateStats) Kind() string { return model.EventUpdateStats }

// NewTestcase announces an input a worker added to its corpus.
type NewTestcase[I any] struct {
	SenderID int
	Input    I
	Fitness  uint32
}

// Kind returns model.EventNewTestcase.
func (NewTestcase[I]) Kind() string { return model.EventNewTestcase }

// State is the read-only view of fuzzer state a manager may consult.
type State interface {
	Executions() uint64
	ExecutionsOverSeconds() uint64
}

// Manager receives the events of one worker. Process is called once per fuzz
// iteration and returns how many events it acted on.
type Manager[I input.Input[I]] interface {
	Fire(ev Event) error
	Process(st State, c corpus.Corpus[I]) (int, error)
}
