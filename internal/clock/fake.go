package clock

import (
	"runtime"
	"sync"
	"time"
)

// Fake is a manually advanced clock for tests.
//
// Timers fire when Advance or Set moves the clock to or past their deadline.
// A timer created with d <= 0 fires immediately.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeTimer
}

// NewFake returns a fake clock positioned at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{f: f, until: f.now.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		t.ch <- f.now
		t.fired = true
		return t
	}
	f.waiters = append(f.waiters, t)
	return t
}

// Advance moves the clock forward by d and fires due timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.fireLocked()
	f.mu.Unlock()
}

// Set moves the clock to t (which may be in the past) and fires due timers.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.fireLocked()
	f.mu.Unlock()
}

// Waiters reports the number of pending timers.
func (f *Fake) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// BlockUntil waits until at least n timers are pending or the deadline passes
// (real time). It reports whether the condition was met.
func (f *Fake) BlockUntil(n int, deadline time.Duration) bool {
	end := time.Now().Add(deadline)
	for {
		if f.Waiters() >= n {
			return true
		}
		if time.Now().After(end) {
			return false
		}
		runtime.Gosched()
		time.Sleep(100 * time.Microsecond)
	}
}

func (f *Fake) fireLocked() {
	n := 0
	for _, w := range f.waiters {
		if !w.until.After(f.now) {
			w.fired = true
			w.ch <- f.now
			continue
		}
		f.waiters[n] = w
		n++
	}
	for i := n; i < len(f.waiters); i++ {
		f.waiters[i] = nil
	}
	f.waiters = f.waiters[:n]
}

func (f *Fake) remove(t *fakeTimer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.fired {
		return false
	}
	for i, w := range f.waiters {
		if w == t {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			t.fired = true
			return true
		}
	}
	return false
}

type fakeTimer struct {
	f     *Fake
	until time.Time
	ch    chan time.Time
	fired bool // guarded by f.mu
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }
func (t *fakeTimer) Stop() bool          { return t.f.remove(t) }
