package model

import "time"

// Event kind constants as persisted in the event log.
const (
	EventLoadInitial = "load_initial"
	EventLog         = "log"
	EventUpdateStats = "update_stats"
	EventNewTestcase = "new_testcase"
)

// TestcaseRecord is the catalog entry for a testcase whose input lives in an
// external file. Metadata holds the msgpack-encoded testcase metadata.
type TestcaseRecord struct {
	ID         string    `json:"id"`
	WorkerID   string    `json:"worker_id"`
	Index      int       `json:"index"`
	Filename   string    `json:"filename"`
	Fitness    uint32    `json:"fitness"`
	ExecTimeNS *int64    `json:"exec_time_ns,omitempty"`
	Metadata   []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventRecord represents a single persisted event.
type EventRecord struct {
	ID        int64     `json:"id"`
	WorkerID  string    `json:"worker_id"`
	Seq       int       `json:"seq"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
