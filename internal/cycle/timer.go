package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"startstop/internal/clock"
	"startstop/internal/eventbus"
	logx "startstop/pkg/logx"
)

// DefaultMaxPoll bounds how long the executor sleeps before re-reading the
// wall clock while waiting for a window to open.
const DefaultMaxPoll = time.Second

// Callback is the user action invoked inside the window. It runs on the
// timer's executor goroutine; invocations of one timer never overlap.
type Callback func()

// Spawner starts a unit of execution. It returns an error instead of starting
// fn when no further unit can be created.
type Spawner interface {
	Spawn(name string, fn func(ctx context.Context) error) error
}

// goSpawner is the fallback when no Spawner is configured: a bare goroutine
// that never refuses. A returned error has nowhere to go but the log.
type goSpawner struct {
	log logx.Logger
}

func (g goSpawner) Spawn(name string, fn func(ctx context.Context) error) error {
	go func() {
		if err := fn(context.Background()); err != nil {
			g.log.Error("unit of execution failed", logx.String("name", name), logx.Err(err))
		}
	}()
	return nil
}

type Option func(*Timer)

func WithClock(c clock.Clock) Option {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

func WithLogger(l logx.Logger) Option { return func(t *Timer) { t.log = l } }

func WithBus(b eventbus.Bus) Option {
	return func(t *Timer) {
		if b != nil {
			t.bus = b
		}
	}
}

func WithSpawner(s Spawner) Option {
	return func(t *Timer) {
		if s != nil {
			t.spawner = s
		}
	}
}

// WithLocation sets the zone SetCycleStartStop interprets its strings in.
func WithLocation(loc *time.Location) Option {
	return func(t *Timer) {
		if loc != nil {
			t.loc = loc
		}
	}
}

func WithMaxPoll(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.maxPoll = d
		}
	}
}

// Timer is one start/stop windowed-cycle timer. All methods are safe for
// concurrent use.
type Timer struct {
	name    string
	clock   clock.Clock
	log     logx.Logger
	bus     eventbus.Bus
	spawner Spawner
	loc     *time.Location
	maxPoll time.Duration

	mu     sync.Mutex
	sched  Schedule
	state  State
	handle *Handle
	cb     Callback
	cycle  int
	stats  runStats
}

type runStats struct {
	invocations uint64
	panics      uint64
	lastInvoke  time.Time
	lastTook    time.Duration
}

// Status is a point-in-time snapshot of a Timer.
type Status struct {
	Name        string        `json:"name"`
	State       string        `json:"state"`
	HandleID    uint64        `json:"handle_id,omitempty"`
	Start       time.Time     `json:"start"`
	Stop        time.Time     `json:"stop"`
	Interval    time.Duration `json:"interval"`
	Multiplier  int           `json:"multiplier"`
	Period      time.Duration `json:"period"`
	Cycle       int           `json:"cycle"`
	Remaining   int           `json:"remaining"`
	Invocations uint64        `json:"invocations"`
	Panics      uint64        `json:"panics"`
	LastInvoke  time.Time     `json:"last_invoke,omitempty"`
	LastTook    time.Duration `json:"last_took,omitempty"`
}

// New returns an uninitialized timer holding DefaultSchedule.
func New(name string, opts ...Option) *Timer {
	t := &Timer{
		name:    name,
		clock:   clock.Real(),
		bus:     eventbus.Nop(),
		loc:     time.Local,
		maxPoll: DefaultMaxPoll,
		sched:   DefaultSchedule(),
	}
	for _, o := range opts {
		o(t)
	}
	t.log = t.log.With(logx.String("task", name))
	if t.spawner == nil {
		t.spawner = goSpawner{log: t.log}
	}
	return t
}

func (t *Timer) Name() string { return t.name }

func (t *Timer) SetCycleStart(ts time.Time) error {
	return t.update(func(s *Schedule) error {
		s.Start = ts
		return nil
	})
}

func (t *Timer) SetCycleStop(ts time.Time) error {
	return t.update(func(s *Schedule) error {
		s.Stop = ts
		return nil
	})
}

func (t *Timer) SetTaskInterval(d time.Duration) error {
	return t.update(func(s *Schedule) error {
		if d <= 0 {
			return ErrInvalidInterval
		}
		s.Interval = d
		return nil
	})
}

func (t *Timer) SetCyclePeriod(d time.Duration) error {
	return t.update(func(s *Schedule) error {
		if d <= 0 {
			return ErrInvalidPeriod
		}
		s.CyclePeriod = d
		return nil
	})
}

func (t *Timer) SetNbrOfCycles(n int) error {
	return t.update(func(s *Schedule) error {
		if n < 0 {
			return ErrInvalidCycles
		}
		s.CyclesRemaining = n
		return nil
	})
}

func (t *Timer) SetIntervalMultiplier(m int) error {
	return t.update(func(s *Schedule) error {
		if m < 1 {
			return ErrInvalidMultiplier
		}
		s.IntervalMultiplier = m
		return nil
	})
}

// SetSchedule replaces every field at once.
func (t *Timer) SetSchedule(next Schedule) error {
	return t.update(func(s *Schedule) error {
		if err := next.Validate(); err != nil {
			return err
		}
		*s = next
		return nil
	})
}

// SetCycleStartStop sets a daily window from "YYYY-MM-DD hh:mm" start and
// stop strings and an "hh:mm" interval. The period becomes one day and the
// number of cycles is derived from the span between the two dates. The
// multiplier is left as is.
func (t *Timer) SetCycleStartStop(start, stop, interval string) error {
	var applied Schedule
	err := t.update(func(s *Schedule) error {
		next, err := ParseStartStop(*s, start, stop, interval, t.loc)
		if err != nil {
			return err
		}
		*s = next
		applied = next
		return nil
	})
	if err != nil {
		return err
	}
	t.log.Info("start/stop window set",
		logx.Time("start", applied.Start),
		logx.Time("stop", applied.Stop),
		logx.Duration("span", applied.Duration()),
		logx.Duration("interval", applied.Interval),
		logx.Int("cycles", applied.CyclesRemaining),
	)
	return nil
}

func (t *Timer) update(fn func(*Schedule) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	// A running executor advances the schedule; setters wait for Suspend.
	if t.handle != nil && t.state == Running {
		return ErrActive
	}
	next := t.sched
	if err := fn(&next); err != nil {
		return err
	}
	t.sched = next
	return nil
}

// Schedule returns the current parameters. While the executor runs, Start,
// Stop and CyclesRemaining reflect its progress.
func (t *Timer) Schedule() Schedule {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Handle returns the live executor handle, or nil when there is none.
func (t *Timer) Handle() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{
		Name:        t.name,
		State:       t.state.String(),
		Start:       t.sched.Start,
		Stop:        t.sched.Stop,
		Interval:    t.sched.Interval,
		Multiplier:  t.sched.IntervalMultiplier,
		Period:      t.sched.CyclePeriod,
		Cycle:       t.cycle,
		Remaining:   t.sched.CyclesRemaining,
		Invocations: t.stats.invocations,
		Panics:      t.stats.panics,
		LastInvoke:  t.stats.lastInvoke,
		LastTook:    t.stats.lastTook,
	}
	if t.handle != nil {
		st.HandleID = t.handle.id
	}
	return st
}

// Init creates the executor in the Suspended state. It is the only way out of
// Uninitialized and the way to re-arm a Terminated timer.
func (t *Timer) Init(cb Callback, stackBudget, priority int) error {
	if cb == nil {
		return ErrNilCallback
	}

	t.mu.Lock()
	if t.handle != nil {
		t.mu.Unlock()
		return ErrAlreadyInitialized
	}
	if err := t.sched.Validate(); err != nil {
		t.mu.Unlock()
		return err
	}
	h := newHandle(t.name, stackBudget, priority, t.clock.Now())
	prev := t.state
	t.handle = h
	t.cb = cb
	t.cycle = 0
	t.stats = runStats{}
	t.state = Suspended
	sched := t.sched
	t.mu.Unlock()

	if err := t.spawner.Spawn("cycle."+t.name, func(ctx context.Context) error {
		t.run(ctx, h)
		return nil
	}); err != nil {
		t.mu.Lock()
		if t.handle == h {
			t.handle = nil
			t.state = prev
		}
		t.mu.Unlock()
		h.cancel()
		h.markDone()
		t.log.Error("task not created, initialization stopped", logx.Err(err))
		return fmt.Errorf("%w: %w", ErrNoResources, err)
	}

	t.log.Info("task created",
		logx.Uint64("handle", h.id),
		logx.Int("stack_budget", stackBudget),
		logx.Int("priority", priority),
		logx.Time("start", sched.Start),
		logx.Time("stop", sched.Stop),
		logx.Duration("step", sched.Step()),
		logx.Int("cycles", sched.CyclesRemaining),
	)
	if sched.Inverted() {
		t.log.Warn("stop is before start, cycles will not invoke the callback")
	}
	if sched.Overlapping() {
		t.log.Warn("window is longer than the cycle period", logx.Duration("window", sched.Duration()), logx.Duration("period", sched.CyclePeriod))
	}
	t.emitState(prev, Suspended)
	return nil
}

// Resume lets the executor run. Resuming a running timer is a no-op.
func (t *Timer) Resume() error {
	t.mu.Lock()
	h := t.handle
	if h == nil {
		t.mu.Unlock()
		return ErrNoTask
	}
	prev := t.state
	if prev == Running {
		t.mu.Unlock()
		return nil
	}
	t.state = Running
	h.gate.resume()
	t.mu.Unlock()

	t.log.Debug("task resumed")
	t.emitState(prev, Running)
	return nil
}

// Suspend pauses the executor at its next checkpoint: before an invocation or
// during a wait. An in-flight callback is not interrupted.
func (t *Timer) Suspend() error {
	t.mu.Lock()
	h := t.handle
	if h == nil {
		t.mu.Unlock()
		return ErrNoTask
	}
	prev := t.state
	if prev == Suspended {
		t.mu.Unlock()
		return nil
	}
	t.state = Suspended
	h.gate.pause()
	t.mu.Unlock()

	t.log.Debug("task suspended")
	t.emitState(prev, Suspended)
	return nil
}

// DeleteTask terminates the executor and forgets its handle. It does not wait
// for an in-flight callback; use the handle's Done channel for that.
func (t *Timer) DeleteTask() error {
	t.mu.Lock()
	h := t.handle
	if h == nil {
		t.mu.Unlock()
		return ErrNoTask
	}
	prev := t.state
	t.handle = nil
	t.state = Terminated
	t.mu.Unlock()

	h.cancel()
	t.log.Info("task deleted", logx.Uint64("handle", h.id))
	t.emitState(prev, Terminated)
	return nil
}

// Wait blocks until the current executor exits or ctx is done. It returns
// ErrNoTask when there is no executor.
func (t *Timer) Wait(ctx context.Context) error {
	h := t.Handle()
	if h == nil {
		return ErrNoTask
	}
	select {
	case <-h.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Timer) emitState(from, to State) {
	t.bus.Publish(eventbus.Event{
		Type: eventbus.TypeState,
		Task: t.name,
		Time: t.clock.Now(),
		Data: eventbus.StateChange{From: from.String(), To: to.String()},
	})
}

// IsLifecycleError reports whether err is a misuse of Init/Resume/Suspend/
// DeleteTask rather than a configuration problem.
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrNoTask) || errors.Is(err, ErrAlreadyInitialized) || errors.Is(err, ErrActive)
}
