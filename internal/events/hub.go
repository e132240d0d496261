package events

import (
	"fmt"
	"sync"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
)

const defaultInboxSize = 256

// Hub connects the workers of one process. Testcases fired by one worker are
// delivered to every other worker's inbox. It is safe for concurrent use.
type Hub[I input.Input[I]] struct {
	mu      sync.RWMutex
	inboxes map[int]chan NewTestcase[I]
	size    int
}

// NewHub creates a hub whose inboxes hold up to inboxSize pending testcases.
// A non-positive size uses the default.
func NewHub[I input.Input[I]](inboxSize int) *Hub[I] {
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	return &Hub[I]{
		inboxes: make(map[int]chan NewTestcase[I]),
		size:    inboxSize,
	}
}

// Join registers worker id and returns its manager. Joining twice with the
// same id fails.
func (h *Hub[I]) Join(id int) (*Local[I], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.inboxes[id]; ok {
		return nil, fmt.Errorf("worker %d already joined", id)
	}
	inbox := make(chan NewTestcase[I], h.size)
	h.inboxes[id] = inbox
	return &Local[I]{hub: h, id: id, inbox: inbox}, nil
}

// Peers returns the number of joined workers.
func (h *Hub[I]) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.inboxes)
}

func (h *Hub[I]) leave(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inboxes, id)
}

// broadcast delivers ev to every worker except from. Each receiver gets its
// own clone of the input. It returns how many deliveries were dropped
// because an inbox was full.
func (h *Hub[I]) broadcast(from int, ev NewTestcase[I]) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for id, inbox := range h.inboxes {
		if id == from {
			continue
		}
		msg := ev
		msg.Input = ev.Input.Clone()
		select {
		case inbox <- msg:
		default:
			dropped++
		}
	}
	return dropped
}

var _ Manager[input.Bytes] = (*Local[input.Bytes])(nil)

// Local is one worker's view of a Hub.
type Local[I input.Input[I]] struct {
	hub     *Hub[I]
	id      int
	inbox   chan NewTestcase[I]
	dropped int
}

// ID returns the worker id this manager joined with.
func (l *Local[I]) ID() int {
	return l.id
}

// Fire broadcasts NewTestcase events to the other workers without blocking.
// Other events are ignored.
func (l *Local[I]) Fire(ev Event) error {
	if tc, ok := ev.(NewTestcase[I]); ok {
		l.dropped += l.hub.broadcast(l.id, tc)
	}
	return nil
}

// Process adds every pending testcase from other workers to c.
func (l *Local[I]) Process(_ State, c corpus.Corpus[I]) (int, error) {
	n := 0
	for {
		select {
		case ev := <-l.inbox:
			tc := corpus.NewTestcase(ev.Input)
			tc.SetFitness(ev.Fitness)
			if _, err := c.Add(tc); err != nil {
				return n, fmt.Errorf("add testcase from worker %d: %w", ev.SenderID, err)
			}
			n++
		default:
			return n, nil
		}
	}
}

// Dropped returns how many deliveries to full peer inboxes were dropped.
func (l *Local[I]) Dropped() int {
	return l.dropped
}

// Leave detaches the worker from the hub. Pending testcases are discarded.
func (l *Local[I]) Leave() {
	l.hub.leave(l.id)
}
