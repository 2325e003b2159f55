package cycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a Timer's executor.
type State int32

const (
	Uninitialized State = iota
	Suspended
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var handleSeq atomic.Uint64

// Handle identifies one executor created by Init. It stays valid for waiting
// on Done after the executor is gone; the Timer forgets it on termination.
//
// StackBudget and Priority are what the caller requested; goroutines have no
// equivalent knobs, so they are kept for diagnostics only.
type Handle struct {
	id          uint64
	name        string
	stackBudget int
	priority    int
	created     time.Time

	ctx    context.Context
	cancel context.CancelFunc
	gate   *gate

	doneOnce sync.Once
	done     chan struct{}
}

func newHandle(name string, stackBudget, priority int, now time.Time) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		id:          handleSeq.Add(1),
		name:        name,
		stackBudget: stackBudget,
		priority:    priority,
		created:     now,
		ctx:         ctx,
		cancel:      cancel,
		gate:        newGate(),
		done:        make(chan struct{}),
	}
}

func (h *Handle) ID() uint64           { return h.id }
func (h *Handle) Name() string         { return h.name }
func (h *Handle) StackBudget() int     { return h.stackBudget }
func (h *Handle) Priority() int        { return h.priority }
func (h *Handle) CreatedAt() time.Time { return h.created }

// Done is closed once the executor has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) markDone() {
	h.doneOnce.Do(func() { close(h.done) })
}
