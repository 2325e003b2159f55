package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by cycle timers.
const (
	TypeState   = "cycle.state"   // Data: StateChange
	TypeInvoke  = "cycle.invoke"  // Data: Invocation
	TypeAdvance = "cycle.advance" // Data: Advance
	TypeDone    = "cycle.done"    // Data: Done
)

// Event is a lightweight, in-memory signal used to decouple components.
//
// Contract:
//   - Publish MUST be non-blocking.
//   - Subscribers MUST use buffered channels.
//   - Slow subscribers may drop events (bounded backpressure).
type Event struct {
	Type string
	Task string
	Time time.Time
	Data any
}

type StateChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Invocation struct {
	Cycle    int           `json:"cycle"`
	Seq      uint64        `json:"seq"`
	Took     time.Duration `json:"took"`
	Panicked bool          `json:"panicked,omitempty"`
}

type Advance struct {
	Cycle     int       `json:"cycle"`
	Remaining int       `json:"remaining"`
	Start     time.Time `json:"start"`
	Stop      time.Time `json:"stop"`
}

type Done struct {
	Cycles      int    `json:"cycles"`
	Invocations uint64 `json:"invocations"`
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns a simple in-memory fanout bus.
//
// It does not own any background goroutines.
func New() Bus {
	return &memBus{subs: map[uint64]chan Event{}}
}

// Nop returns a bus that drops everything.
func Nop() Bus { return nopBus{} }

type nopBus struct{}

func (nopBus) Publish(Event) {}
func (nopBus) Subscribe(int) (<-chan Event, func()) {
	ch := make(chan Event)
	close(ch)
	return ch, func() {}
}

type memBus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	seq  atomic.Uint64
}

func (b *memBus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Sends never block, so holding the read lock is brief. It also keeps
	// unsubscribe from closing a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *memBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, unsub
}
