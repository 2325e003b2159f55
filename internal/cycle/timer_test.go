package cycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"startstop/internal/clock"
	"startstop/internal/eventbus"
	logx "startstop/pkg/logx"
)

var t0 = time.Date(2023, 6, 5, 9, 0, 0, 0, time.UTC)

const waitFor = 2 * time.Second

type harness struct {
	t     *testing.T
	clk   *clock.Fake
	timer *Timer
	calls chan time.Time
	n     atomic.Int64
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, clk: clock.NewFake(t0), calls: make(chan time.Time, 64)}
	opts = append([]Option{WithClock(h.clk), WithLocation(time.UTC)}, opts...)
	h.timer = New("test", opts...)
	return h
}

func (h *harness) callback() {
	h.n.Add(1)
	h.calls <- h.clk.Now()
}

func (h *harness) start(s Schedule) {
	h.t.Helper()
	if err := h.timer.SetSchedule(s); err != nil {
		h.t.Fatalf("SetSchedule: %v", err)
	}
	if err := h.timer.Init(h.callback, 2000, 1); err != nil {
		h.t.Fatalf("Init: %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		h.t.Fatalf("Resume: %v", err)
	}
}

func (h *harness) expectCall(at time.Time) {
	h.t.Helper()
	select {
	case got := <-h.calls:
		if !got.Equal(at) {
			h.t.Fatalf("invocation at %v want %v", got, at)
		}
	case <-time.After(waitFor):
		h.t.Fatalf("no invocation (want one at %v)", at)
	}
}

func (h *harness) expectNoCall() {
	h.t.Helper()
	select {
	case got := <-h.calls:
		h.t.Fatalf("unexpected invocation at %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

// advance waits for the executor to block on a timer, then moves the clock.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	if !h.clk.BlockUntil(1, waitFor) {
		h.t.Fatalf("executor is not waiting")
	}
	h.clk.Advance(d)
}

func (h *harness) waitDone(hd *Handle) {
	h.t.Helper()
	select {
	case <-hd.Done():
	case <-time.After(waitFor):
		h.t.Fatalf("executor did not exit")
	}
}

func sched(start, stop time.Time, interval, period time.Duration, cycles int) Schedule {
	return Schedule{Start: start, Stop: stop, Interval: interval, IntervalMultiplier: 1, CyclePeriod: period, CyclesRemaining: cycles}
}

func TestTimer_InvokesEveryStepInsideWindow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(10*time.Second), 2*time.Second, 30*time.Second, 1))
	hd := h.timer.Handle()

	for i := 0; i < 5; i++ {
		h.expectCall(t0.Add(time.Duration(i) * 2 * time.Second))
		h.advance(2 * time.Second)
	}
	h.waitDone(hd)

	if h.n.Load() != 5 {
		t.Fatalf("invocations=%d want 5", h.n.Load())
	}
	if st := h.timer.State(); st != Terminated {
		t.Fatalf("state=%v want terminated", st)
	}
	if h.timer.Handle() != nil {
		t.Fatalf("handle must be cleared on completion")
	}
}

func TestTimer_WaitsForStartAndSnapsIt(t *testing.T) {
	t.Parallel()

	h := newHarness(t, WithMaxPoll(time.Hour))
	start := t0.Add(15 * time.Minute)
	h.start(sched(start, start.Add(time.Minute), 30*time.Second, time.Hour, 2))

	h.expectNoCall()
	h.advance(15*time.Minute + 5*time.Second)
	h.expectCall(start.Add(5 * time.Second))

	s := h.timer.Schedule()
	if !s.Start.Equal(start.Add(5 * time.Second)) {
		t.Fatalf("start=%v want snapped to %v", s.Start, start.Add(5*time.Second))
	}
	if st := h.timer.Status(); st.Cycle != 1 || st.Remaining != 2 {
		t.Fatalf("status=%+v", st)
	}
}

func TestTimer_MultiplierScalesInterval(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	s := sched(t0, t0.Add(time.Minute), time.Second, time.Hour, 1)
	s.IntervalMultiplier = 10
	h.start(s)

	h.expectCall(t0)
	h.advance(9 * time.Second)
	h.expectNoCall()
	h.advance(time.Second)
	h.expectCall(t0.Add(10 * time.Second))
}

func TestTimer_CyclesAdvanceByPeriod(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	events, unsub := bus.Subscribe(64)
	defer unsub()

	h := newHarness(t, WithBus(bus), WithMaxPoll(time.Hour))
	// 10s window, 30s period, 3 cycles, 4s interval: invocations at 0,4,8 per cycle.
	h.start(sched(t0, t0.Add(10*time.Second), 4*time.Second, 30*time.Second, 3))
	hd := h.timer.Handle()

	for c := 0; c < 3; c++ {
		base := t0.Add(time.Duration(c) * 30 * time.Second)
		h.expectCall(base)
		h.advance(4 * time.Second)
		h.expectCall(base.Add(4 * time.Second))
		h.advance(4 * time.Second)
		h.expectCall(base.Add(8 * time.Second))
		h.advance(4 * time.Second) // past stop; cycle advances
		if c < 2 {
			h.advance(18 * time.Second) // wait for next start
		}
	}
	h.waitDone(hd)

	if h.n.Load() != 9 {
		t.Fatalf("invocations=%d want 9", h.n.Load())
	}
	s := h.timer.Schedule()
	if s.CyclesRemaining != 0 {
		t.Fatalf("remaining=%d want 0", s.CyclesRemaining)
	}
	if !s.Start.Equal(t0.Add(90 * time.Second)) {
		t.Fatalf("start=%v want %v", s.Start, t0.Add(90*time.Second))
	}

	var advances, done int
	deadline := time.After(waitFor)
	for done == 0 {
		select {
		case e := <-events:
			switch e.Type {
			case eventbus.TypeAdvance:
				advances++
			case eventbus.TypeDone:
				done++
				if d := e.Data.(eventbus.Done); d.Cycles != 3 || d.Invocations != 9 {
					t.Fatalf("done=%+v", d)
				}
			}
		case <-deadline:
			t.Fatalf("no done event")
		}
	}
	if advances != 3 {
		t.Fatalf("advance events=%d want 3", advances)
	}
}

func TestTimer_InvertedWindowNeverInvokes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, WithMaxPoll(time.Hour))
	h.start(sched(t0, t0.Add(-time.Second), time.Second, 10*time.Second, 2))
	hd := h.timer.Handle()

	h.advance(10 * time.Second)
	h.waitDone(hd)

	if h.n.Load() != 0 {
		t.Fatalf("invocations=%d want 0", h.n.Load())
	}
	s := h.timer.Schedule()
	if !s.Start.Equal(t0.Add(20*time.Second)) || !s.Stop.Equal(t0.Add(19*time.Second)) {
		t.Fatalf("window=%v..%v", s.Start, s.Stop)
	}
}

func TestTimer_ZeroCyclesTerminatesImmediately(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.timer.SetSchedule(sched(t0, t0.Add(time.Hour), time.Second, time.Hour, 0)); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if err := h.timer.Init(h.callback, 0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	hd := h.timer.Handle()
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	h.waitDone(hd)

	if h.n.Load() != 0 {
		t.Fatalf("invocations=%d want 0", h.n.Load())
	}
	if h.timer.State() != Terminated {
		t.Fatalf("state=%v", h.timer.State())
	}
}

func TestTimer_SuspendAndResume(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), 5*time.Second, time.Hour, 1))

	h.expectCall(t0)
	if !h.clk.BlockUntil(1, waitFor) {
		t.Fatalf("executor is not sleeping")
	}
	if err := h.timer.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if h.timer.State() != Suspended {
		t.Fatalf("state=%v", h.timer.State())
	}
	h.clk.Advance(20 * time.Second)
	h.expectNoCall()

	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	// Delay already elapsed while suspended: one invocation, no catch-up.
	h.expectCall(t0.Add(20 * time.Second))
	h.expectNoCall()
	h.advance(5 * time.Second)
	h.expectCall(t0.Add(25 * time.Second))
}

func TestTimer_SuspendBeforeIntervalElapsedKeepsDeadline(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), 10*time.Second, time.Hour, 1))

	h.expectCall(t0)
	h.advance(3 * time.Second)
	if err := h.timer.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	h.expectNoCall()
	h.advance(7 * time.Second)
	h.expectCall(t0.Add(10 * time.Second))
}

func TestTimer_DeleteTaskStopsInvocations(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), time.Second, time.Hour, 1))
	hd := h.timer.Handle()

	h.expectCall(t0)
	if err := h.timer.DeleteTask(); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if h.timer.Handle() != nil {
		t.Fatalf("handle must be cleared")
	}
	if h.timer.State() != Terminated {
		t.Fatalf("state=%v", h.timer.State())
	}
	h.waitDone(hd)
	h.clk.Advance(10 * time.Second)
	h.expectNoCall()

	for name, fn := range map[string]func() error{
		"resume":  h.timer.Resume,
		"suspend": h.timer.Suspend,
		"delete":  h.timer.DeleteTask,
	} {
		if err := fn(); !errors.Is(err, ErrNoTask) {
			t.Fatalf("%s after delete: want ErrNoTask, got %v", name, err)
		}
	}
}

func TestTimer_DeleteWhileSuspendedBeforeResume(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.timer.Init(h.callback, 0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	hd := h.timer.Handle()
	if h.timer.State() != Suspended {
		t.Fatalf("state=%v want suspended", h.timer.State())
	}
	if err := h.timer.DeleteTask(); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	h.waitDone(hd)
	h.expectNoCall()
}

func TestTimer_ReinitAfterTermination(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), time.Second, time.Hour, 1))
	h.expectCall(t0)
	if err := h.timer.DeleteTask(); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	// Terminated timers accept configuration again.
	if err := h.timer.SetCycleStart(t0.Add(time.Hour)); err != nil {
		t.Fatalf("SetCycleStart: %v", err)
	}
	if err := h.timer.SetCycleStop(t0.Add(2 * time.Hour)); err != nil {
		t.Fatalf("SetCycleStop: %v", err)
	}
	if err := h.timer.Init(h.callback, 0, 0); err != nil {
		t.Fatalf("re-Init: %v", err)
	}
	if err := h.timer.Init(h.callback, 0, 0); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init: want ErrAlreadyInitialized, got %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	h.clk.Set(t0.Add(time.Hour))
	h.expectCall(t0.Add(time.Hour))
}

func TestTimer_SettersRefusedWhileRunning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	// A window in the future keeps the executor waiting for its start.
	if err := h.timer.SetSchedule(sched(t0.Add(time.Hour), t0.Add(2*time.Hour), time.Second, time.Hour, 1)); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if err := h.timer.Init(h.callback, 0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Suspended before first resume: still configurable.
	if err := h.timer.SetTaskInterval(2 * time.Second); err != nil {
		t.Fatalf("SetTaskInterval while suspended: %v", err)
	}
	if err := h.timer.SetNbrOfCycles(5); err != nil {
		t.Fatalf("SetNbrOfCycles: %v", err)
	}
	if err := h.timer.SetCyclePeriod(time.Hour); err != nil {
		t.Fatalf("SetCyclePeriod: %v", err)
	}
	if err := h.timer.SetIntervalMultiplier(2); err != nil {
		t.Fatalf("SetIntervalMultiplier: %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := h.timer.SetTaskInterval(time.Second); !errors.Is(err, ErrActive) {
		t.Fatalf("want ErrActive, got %v", err)
	}
	if err := h.timer.SetCycleStartStop("2023-06-05 09:15", "2023-06-05 10:15", "00:05"); !errors.Is(err, ErrActive) {
		t.Fatalf("want ErrActive, got %v", err)
	}

	if err := h.timer.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := h.timer.SetNbrOfCycles(2); err != nil {
		t.Fatalf("SetNbrOfCycles after Suspend: %v", err)
	}
	if got := h.timer.Schedule().CyclesRemaining; got != 2 {
		t.Fatalf("cycles=%d want 2", got)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := h.timer.SetNbrOfCycles(3); !errors.Is(err, ErrActive) {
		t.Fatalf("want ErrActive after Resume, got %v", err)
	}
}

func TestTimer_SetCycleStopWhileSuspended(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), 5*time.Second, time.Hour, 2))

	h.expectCall(t0)
	if !h.clk.BlockUntil(1, waitFor) {
		t.Fatalf("executor is not sleeping")
	}
	if err := h.timer.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := h.timer.SetCycleStop(t0.Add(7 * time.Second)); err != nil {
		t.Fatalf("SetCycleStop while suspended: %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	h.advance(5 * time.Second)
	h.expectCall(t0.Add(5 * time.Second))
	// The shortened window closes before the next step.
	h.advance(5 * time.Second)
	h.expectNoCall()

	end := time.Now().Add(waitFor)
	for {
		s := h.timer.Schedule()
		if s.CyclesRemaining == 1 {
			if !s.Stop.Equal(t0.Add(time.Hour+7*time.Second)) || !s.Start.Equal(t0.Add(time.Hour)) {
				t.Fatalf("next window=[%v, %v)", s.Start, s.Stop)
			}
			break
		}
		if time.Now().After(end) {
			t.Fatalf("cycle did not advance: %+v", s)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTimer_SetTaskIntervalWhileSuspended(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(sched(t0, t0.Add(time.Minute), 10*time.Second, time.Hour, 1))

	h.expectCall(t0)
	h.advance(3 * time.Second)
	if err := h.timer.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := h.timer.SetTaskInterval(4 * time.Second); err != nil {
		t.Fatalf("SetTaskInterval while suspended: %v", err)
	}
	if err := h.timer.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	// The next deadline is measured from the last return with the new step.
	h.advance(time.Second)
	h.expectCall(t0.Add(4 * time.Second))
	h.advance(4 * time.Second)
	h.expectCall(t0.Add(8 * time.Second))
}

func TestTimer_SetterValidation(t *testing.T) {
	t.Parallel()

	tm := New("v")
	before := tm.Schedule()
	checks := []struct {
		name string
		err  error
		want error
	}{
		{"interval", tm.SetTaskInterval(0), ErrInvalidInterval},
		{"multiplier", tm.SetIntervalMultiplier(0), ErrInvalidMultiplier},
		{"period", tm.SetCyclePeriod(-time.Second), ErrInvalidPeriod},
		{"cycles", tm.SetNbrOfCycles(-1), ErrInvalidCycles},
		{"start_stop", tm.SetCycleStartStop("2023-06-05 09:15", "bogus", "00:05"), ErrMalformedTime},
	}
	for _, c := range checks {
		if !errors.Is(c.err, c.want) {
			t.Fatalf("%s: want %v, got %v", c.name, c.want, c.err)
		}
	}
	if tm.Schedule() != before {
		t.Fatalf("rejected setters must not change the schedule")
	}
	if err := tm.Init(nil, 0, 0); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("want ErrNilCallback, got %v", err)
	}
	if err := tm.Resume(); !errors.Is(err, ErrNoTask) {
		t.Fatalf("resume before init: want ErrNoTask, got %v", err)
	}
}

func TestTimer_SetCycleStartStopUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("MESZ", 2*3600)
	tm := New("photo", WithLocation(loc))
	if err := tm.SetIntervalMultiplier(4); err != nil {
		t.Fatalf("SetIntervalMultiplier: %v", err)
	}
	if err := tm.SetCycleStartStop("2023-06-05 09:15", "2023-06-08 12:30", "00:05"); err != nil {
		t.Fatalf("SetCycleStartStop: %v", err)
	}
	s := tm.Schedule()
	want := time.Date(2023, 6, 5, 7, 15, 0, 0, time.UTC)
	if !s.Start.Equal(want) {
		t.Fatalf("start=%v want %v", s.Start, want)
	}
	if s.Interval != 5*time.Minute || s.CyclesRemaining != 4 || s.CyclePeriod != 24*time.Hour || s.IntervalMultiplier != 4 {
		t.Fatalf("schedule=%+v", s)
	}
}

func TestTimer_CallbackPanicIsContained(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(t0)
	tm := New("panicky", WithClock(clk))
	calls := make(chan struct{}, 8)
	var n atomic.Int64
	cb := func() {
		calls <- struct{}{}
		if n.Add(1) == 1 {
			panic("boom")
		}
	}
	if err := tm.SetSchedule(sched(t0, t0.Add(time.Minute), time.Second, time.Hour, 1)); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if err := tm.Init(cb, 0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := tm.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(waitFor):
			t.Fatalf("invocation %d missing", i+1)
		}
		if !clk.BlockUntil(1, waitFor) {
			t.Fatalf("executor is not sleeping")
		}
		clk.Advance(time.Second)
	}
	st := tm.Status()
	if st.Panics != 1 || st.Invocations < 2 {
		t.Fatalf("status=%+v", st)
	}
	if tm.State() != Running {
		t.Fatalf("state=%v want running", tm.State())
	}
	_ = tm.DeleteTask()
}

type refusingSpawner struct{}

func (refusingSpawner) Spawn(string, func(context.Context) error) error {
	return errors.New("no memory")
}

func TestTimer_InitReportsExhaustion(t *testing.T) {
	t.Parallel()

	tm := New("starved", WithSpawner(refusingSpawner{}))
	err := tm.Init(func() {}, 2000, 1)
	if !errors.Is(err, ErrNoResources) {
		t.Fatalf("want ErrNoResources, got %v", err)
	}
	if tm.Handle() != nil {
		t.Fatalf("handle must stay absent")
	}
	if tm.State() != Uninitialized {
		t.Fatalf("state=%v want uninitialized", tm.State())
	}
}

func TestTimer_SpawnerContextCancelStopsExecutor(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sp := ctxSpawner{ctx: ctx}
	h := newHarness(t, WithSpawner(sp))
	h.start(sched(t0, t0.Add(time.Minute), time.Second, time.Hour, 1))
	hd := h.timer.Handle()
	h.expectCall(t0)

	cancel()
	h.waitDone(hd)
	if h.timer.State() != Terminated || h.timer.Handle() != nil {
		t.Fatalf("state=%v handle=%v", h.timer.State(), h.timer.Handle())
	}
}

type ctxSpawner struct{ ctx context.Context }

func (s ctxSpawner) Spawn(_ string, fn func(context.Context) error) error {
	go func() { _ = fn(s.ctx) }()
	return nil
}

func TestTimer_RealClockRespectsInterval(t *testing.T) {
	t.Parallel()

	tm := New("real")
	var (
		mu     sync.Mutex
		stamps []time.Time
	)
	cb := func() {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
	}
	now := time.Now()
	if err := tm.SetSchedule(sched(now, now.Add(120*time.Millisecond), 20*time.Millisecond, time.Hour, 1)); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if err := tm.Init(cb, 0, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	hd := tm.Handle()
	if err := tm.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	select {
	case <-hd.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("timer did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(stamps) == 0 || len(stamps) > 7 {
		t.Fatalf("invocations=%d want 1..7", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 20*time.Millisecond {
			t.Fatalf("gap %d = %v, sooner than interval", i, gap)
		}
	}
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestGoSpawnerLogsFailure(t *testing.T) {
	t.Parallel()

	var buf lockedBuffer
	sp := goSpawner{log: logx.NewWriter(&buf, "info")}
	if err := sp.Spawn("cycle.blink", func(context.Context) error { return errors.New("boom") }); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	end := time.Now().Add(waitFor)
	for !strings.Contains(buf.String(), `"err":"boom"`) {
		if time.Now().After(end) {
			t.Fatalf("failure not logged: %q", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), `"name":"cycle.blink"`) {
		t.Fatalf("missing unit name: %q", buf.String())
	}
}

func TestIsLifecycleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{ErrNoTask, true},
		{fmt.Errorf("disarm: %w", ErrAlreadyInitialized), true},
		{ErrActive, true},
		{ErrNoResources, false},
		{ErrInvalidInterval, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsLifecycleError(tt.err); got != tt.want {
			t.Fatalf("IsLifecycleError(%v)=%v want %v", tt.err, got, tt.want)
		}
	}
}
