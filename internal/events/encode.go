package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seantiz/kiln/internal/model"
)

type newTestcasePayload struct {
	SenderID int    `json:"sender_id"`
	Fitness  uint32 `json:"fitness"`
	Size     int    `json:"size"`
}

// encode renders ev as an event record. Inputs are summarized by size.
func encode(workerID string, seq int, ev Event) (*model.EventRecord, error) {
	var body any = ev
	if tc, ok := ev.(interface{ payload() newTestcasePayload }); ok {
		body = tc.payload()
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Kind(), err)
	}
	return &model.EventRecord{
		WorkerID:  workerID,
		Seq:       seq,
		Kind:      ev.Kind(),
		Payload:   string(data),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (e NewTestcase[I]) payload() newTestcasePayload {
	p := newTestcasePayload{SenderID: e.SenderID, Fitness: e.Fitness}
	if l, ok := any(e.Input).(interface{ Len() int }); ok {
		p.Size = l.Len()
	}
	return p
}
