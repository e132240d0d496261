package events

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
)

// WorkerStats is the last reported progress of one worker.
type WorkerStats struct {
	ID          int       `json:"id"`
	Executions  uint64    `json:"executions"`
	ExecsPerSec uint64    `json:"execs_per_sec"`
	CorpusSize  int       `json:"corpus_size"`
	NewFound    int       `json:"new_testcases"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot aggregates the progress of every worker.
type Snapshot struct {
	StartedAt   time.Time     `json:"started_at"`
	Executions  uint64        `json:"executions"`
	ExecsPerSec uint64        `json:"execs_per_sec"`
	CorpusSize  int           `json:"corpus_size"`
	Workers     []WorkerStats `json:"workers"`
}

// Monitor collects worker progress for the console and the stats endpoint.
// It is safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	out     io.Writer
	started time.Time
	workers map[int]*WorkerStats
	label   *color.Color
	value   *color.Color
}

// NewMonitor returns a monitor printing a stats line to out on every update.
// A nil out disables printing.
func NewMonitor(out io.Writer) *Monitor {
	return &Monitor{
		out:     out,
		started: time.Now().UTC(),
		workers: make(map[int]*WorkerStats),
		label:   color.New(color.FgCyan, color.Bold),
		value:   color.New(color.FgGreen),
	}
}

// Snapshot returns a copy of the current progress, workers ordered by id.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{StartedAt: m.started, Workers: make([]WorkerStats, 0, len(m.workers))}
	for _, w := range m.workers {
		s.Executions += w.Executions
		s.ExecsPerSec += w.ExecsPerSec
		s.CorpusSize += w.CorpusSize
		s.Workers = append(s.Workers, *w)
	}
	sort.Slice(s.Workers, func(i, j int) bool {
		return s.Workers[i].ID < s.Workers[j].ID
	})
	return s
}

func (m *Monitor) worker(id int) *WorkerStats {
	w, ok := m.workers[id]
	if !ok {
		w = &WorkerStats{ID: id}
		m.workers[id] = w
	}
	return w
}

func (m *Monitor) update(id int, ev UpdateStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.worker(id)
	w.Executions = ev.Executions
	w.ExecsPerSec = ev.ExecsPerSec
	w.UpdatedAt = time.Now().UTC()
	if m.out != nil {
		m.print(w)
	}
}

func (m *Monitor) print(w *WorkerStats) {
	m.label.Fprintf(m.out, "[worker %d]", w.ID)
	m.label.Fprint(m.out, " execs: ")
	m.value.Fprintf(m.out, "%d", w.Executions)
	m.label.Fprint(m.out, " exec/s: ")
	m.value.Fprintf(m.out, "%d", w.ExecsPerSec)
	m.label.Fprint(m.out, " corpus: ")
	m.value.Fprintf(m.out, "%d", w.CorpusSize)
	m.label.Fprint(m.out, " new: ")
	m.value.Fprintf(m.out, "%d\n", w.NewFound)
}

func (m *Monitor) found(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worker(id).NewFound++
}

func (m *Monitor) corpusSize(id, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worker(id).CorpusSize = n
}

var _ Manager[input.Bytes] = (*MonitorManager[input.Bytes])(nil)

// MonitorManager reports the progress of one worker to a Monitor.
type MonitorManager[I input.Input[I]] struct {
	monitor *Monitor
	id      int
}

// NewMonitorManager attaches worker workerID to m.
func NewMonitorManager[I input.Input[I]](m *Monitor, workerID int) *MonitorManager[I] {
	return &MonitorManager[I]{monitor: m, id: workerID}
}

// Fire records stats updates and new testcases.
func (mm *MonitorManager[I]) Fire(ev Event) error {
	switch e := ev.(type) {
	case UpdateStats:
		mm.monitor.update(mm.id, e)
	case NewTestcase[I]:
		mm.monitor.found(mm.id)
	}
	return nil
}

// Process records the corpus size.
func (mm *MonitorManager[I]) Process(_ State, c corpus.Corpus[I]) (int, error) {
	mm.monitor.corpusSize(mm.id, c.Count())
	return 0, nil
}
