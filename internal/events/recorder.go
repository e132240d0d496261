package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/model"
)

// EventStore persists event records.
type EventStore interface {
	InsertEvent(ctx context.Context, ev *model.EventRecord) error
}

var _ Manager[input.Bytes] = (*Recorder[input.Bytes])(nil)

// Recorder appends every event of one worker to an EventStore. UpdateStats
// events are recorded too, so history keeps one row per heartbeat.
type Recorder[I input.Input[I]] struct {
	store    EventStore
	workerID string
	seq      int
}

// NewRecorder returns a recorder for worker workerID.
func NewRecorder[I input.Input[I]](store EventStore, workerID int) *Recorder[I] {
	return &Recorder[I]{store: store, workerID: strconv.Itoa(workerID)}
}

// Fire persists ev.
func (r *Recorder[I]) Fire(ev Event) error {
	rec, err := encode(r.workerID, r.seq, ev)
	if err != nil {
		return fmt.Errorf("recorder: %w", err)
	}
	if err := r.store.InsertEvent(context.Background(), rec); err != nil {
		return fmt.Errorf("recorder: %w", err)
	}
	r.seq++
	return nil
}

// Process does nothing.
func (r *Recorder[I]) Process(State, corpus.Corpus[I]) (int, error) {
	return 0, nil
}
