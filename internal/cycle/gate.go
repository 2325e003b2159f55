package cycle

import (
	"context"
	"sync"
)

// gate blocks the executor while its handle is suspended.
//
// Exactly one of resumed/paused is closed at any time, so a waiter can select
// on the one that signals the transition it cares about.
type gate struct {
	mu      sync.Mutex
	open    bool
	resumed chan struct{}
	paused  chan struct{}
}

// newGate starts closed (suspended).
func newGate() *gate {
	g := &gate{resumed: make(chan struct{}), paused: make(chan struct{})}
	close(g.paused)
	return g
}

func (g *gate) resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return false
	}
	g.open = true
	g.paused = make(chan struct{})
	close(g.resumed)
	return true
}

func (g *gate) pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return false
	}
	g.open = false
	g.resumed = make(chan struct{})
	close(g.paused)
	return true
}

func (g *gate) channels() (resumed, paused <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resumed, g.paused
}

// wait returns once the gate is open or ctx is done.
func (g *gate) wait(ctx context.Context) error {
	resumed, _ := g.channels()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resumed:
		return nil
	}
}
