package cycle

import (
	"context"
	"runtime/debug"
	"time"

	"startstop/internal/eventbus"
	logx "startstop/pkg/logx"
)

// run is the executor body. It exits when the cycles are exhausted, the handle
// is deleted, or the spawner's context is canceled.
//
// The schedule is re-read at every checkpoint, so setters applied while the
// timer was suspended take effect on resume.
func (t *Timer) run(parent context.Context, h *Handle) {
	stop := context.AfterFunc(parent, h.cancel)
	defer stop()

	completed, cycles := false, 0
	defer func() { t.finish(h, completed, cycles) }()

	ctx := h.ctx
	t.mu.Lock()
	cb := t.cb
	t.mu.Unlock()

	var s Schedule
	checkpoint := func() error {
		if err := h.gate.wait(ctx); err != nil {
			return err
		}
		cur, alive := t.current(h)
		if !alive {
			return context.Canceled
		}
		s = cur
		return nil
	}

	for {
		if err := checkpoint(); err != nil {
			return
		}
		if s.CyclesRemaining <= 0 {
			break
		}
		cycle := cycles + 1

		for entered := false; !entered; {
			if err := t.sleepUntil(ctx, h, checkpoint, func() time.Time { return s.Start }, t.maxPoll); err != nil {
				return
			}
			var alive bool
			if s, entered, alive = t.enter(h, cycle); !alive {
				return
			}
		}
		t.log.Debug("cycle started", logx.Int("cycle", cycle), logx.Time("start", s.Start), logx.Time("stop", s.Stop))

		for {
			if err := checkpoint(); err != nil {
				return
			}
			if !t.clock.Now().Before(s.Stop) {
				break
			}
			runNow, alive := t.admit(h)
			if !alive {
				return
			}
			if !runNow {
				continue
			}
			t.invoke(h, cb, cycle)
			ret := t.clock.Now()
			if err := t.sleepUntil(ctx, h, checkpoint, func() time.Time { return ret.Add(s.Step()) }, 0); err != nil {
				return
			}
		}

		var alive bool
		if s, alive = t.advance(h); !alive {
			return
		}
		cycles++
		t.bus.Publish(eventbus.Event{
			Type: eventbus.TypeAdvance,
			Task: t.name,
			Time: t.clock.Now(),
			Data: eventbus.Advance{Cycle: cycle, Remaining: s.CyclesRemaining, Start: s.Start, Stop: s.Stop},
		})
		t.log.Info("cycle finished",
			logx.Int("cycle", cycle),
			logx.Int("remaining", s.CyclesRemaining),
			logx.Time("next_start", s.Start),
			logx.Time("next_stop", s.Stop),
		)
	}
	completed = true
}

// current returns the stored schedule while h is still the timer's handle.
func (t *Timer) current(h *Handle) (Schedule, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched, t.handle == h
}

// enter snaps Start to the time the window was actually reached; the next
// cycle is measured from there. entered is false when Start was moved past
// now while the executor was on its way here.
func (t *Timer) enter(h *Handle, cycle int) (s Schedule, entered, alive bool) {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle != h {
		return t.sched, false, false
	}
	if now.Before(t.sched.Start) {
		return t.sched, false, true
	}
	t.sched.Start = now
	t.cycle = cycle
	return t.sched, true, true
}

// advance moves the stored window by one period and counts the cycle down.
func (t *Timer) advance(h *Handle) (Schedule, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle != h {
		return t.sched, false
	}
	t.sched.advance()
	if t.sched.CyclesRemaining > 0 {
		t.sched.CyclesRemaining--
	}
	return t.sched, true
}

// admit reports whether the executor may invoke now (handle current and
// state Running) and whether the handle is still current at all. Checking
// under the timer lock is what keeps invocations from starting after
// DeleteTask or Suspend has returned.
func (t *Timer) admit(h *Handle) (runNow, alive bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle != h || h.ctx.Err() != nil {
		return false, false
	}
	return t.state == Running, true
}

// sleepUntil blocks until the wall clock reaches deadline. Each sleep is
// capped at poll when poll > 0 so wall-clock steps are noticed. A suspension
// interrupts the sleep; deadline is evaluated again after every checkpoint,
// so it survives a suspension unless a setter moved it.
func (t *Timer) sleepUntil(ctx context.Context, h *Handle, checkpoint func() error, deadline func() time.Time, poll time.Duration) error {
	for {
		if err := checkpoint(); err != nil {
			return err
		}
		now := t.clock.Now()
		dl := deadline()
		if !now.Before(dl) {
			return nil
		}
		d := dl.Sub(now)
		if poll > 0 && d > poll {
			d = poll
		}
		t.log.Trace("executor sleeping", logx.Duration("for", d), logx.Time("until", dl))
		_, paused := h.gate.channels()
		tm := t.clock.NewTimer(d)
		select {
		case <-ctx.Done():
			tm.Stop()
			return ctx.Err()
		case <-paused:
			tm.Stop()
		case <-tm.C():
		}
	}
}

func (t *Timer) invoke(h *Handle, cb Callback, cycle int) {
	started := t.clock.Now()
	panicked := func() (panicked bool) {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
				t.log.Error("callback panicked",
					logx.Uint64("handle", h.id),
					logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())),
				)
			}
		}()
		cb()
		return false
	}()
	took := t.clock.Now().Sub(started)

	t.mu.Lock()
	t.stats.invocations++
	seq := t.stats.invocations
	if panicked {
		t.stats.panics++
	}
	t.stats.lastInvoke = started
	t.stats.lastTook = took
	t.mu.Unlock()

	t.log.Debug("callback invoked", logx.Int("cycle", cycle), logx.Uint64("seq", seq), logx.Duration("took", took))
	t.bus.Publish(eventbus.Event{
		Type: eventbus.TypeInvoke,
		Task: t.name,
		Time: started,
		Data: eventbus.Invocation{Cycle: cycle, Seq: seq, Took: took, Panicked: panicked},
	})
}

func (t *Timer) finish(h *Handle, completed bool, cycles int) {
	t.mu.Lock()
	current := t.handle == h
	prev := t.state
	if current {
		t.handle = nil
		t.state = Terminated
	}
	invocations := t.stats.invocations
	t.mu.Unlock()

	h.cancel()
	h.markDone()

	if !current {
		return
	}
	if completed {
		t.log.Info("all cycles done, task terminated", logx.Int("cycles", cycles), logx.Uint64("invocations", invocations))
	} else {
		t.log.Info("task stopped", logx.Uint64("handle", h.id))
	}
	t.bus.Publish(eventbus.Event{
		Type: eventbus.TypeDone,
		Task: t.name,
		Time: t.clock.Now(),
		Data: eventbus.Done{Cycles: cycles, Invocations: invocations},
	})
	t.emitState(prev, Terminated)
}
