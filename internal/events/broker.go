package events

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/seantiz/kiln/internal/corpus"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/model"
)

// subscriberBufferSize is the channel buffer for each subscriber. Events are
// dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// Broker fans encoded events out to live subscribers. It is safe for
// concurrent use.
//
// After Close, Subscribe returns an already closed channel so late
// subscribers do not block forever.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan model.EventRecord
	nextID int
	closed bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]chan model.EventRecord),
	}
}

// Subscribe returns a channel that receives every published event and an
// unsubscribe function.
func (b *Broker) Subscribe() (<-chan model.EventRecord, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.EventRecord, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish sends rec to all subscribers, dropping it for those whose buffers
// are full.
func (b *Broker) Publish(rec model.EventRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

var _ Manager[input.Bytes] = (*BrokerManager[input.Bytes])(nil)

// BrokerManager publishes the events of one worker to a Broker.
type BrokerManager[I input.Input[I]] struct {
	broker   *Broker
	workerID string
	seq      int
}

// NewBrokerManager attaches worker workerID to b.
func NewBrokerManager[I input.Input[I]](b *Broker, workerID int) *BrokerManager[I] {
	return &BrokerManager[I]{broker: b, workerID: strconv.Itoa(workerID)}
}

// Fire encodes ev and publishes it.
func (m *BrokerManager[I]) Fire(ev Event) error {
	rec, err := encode(m.workerID, m.seq, ev)
	if err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	m.seq++
	m.broker.Publish(*rec)
	return nil
}

// Process does nothing.
func (m *BrokerManager[I]) Process(State, corpus.Corpus[I]) (int, error) {
	return 0, nil
}
