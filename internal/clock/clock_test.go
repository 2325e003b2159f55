package clock

import (
	"testing"
	"time"
)

func TestFakeTimerFiresOnAdvance(t *testing.T) {
	t.Parallel()
	start := time.Date(2023, 6, 5, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)

	tm := f.NewTimer(5 * time.Second)
	if f.Waiters() != 1 {
		t.Fatalf("Waiters = %d, want 1", f.Waiters())
	}

	f.Advance(4 * time.Second)
	select {
	case <-tm.C():
		t.Fatal("timer fired early")
	default:
	}

	f.Advance(time.Second)
	select {
	case got := <-tm.C():
		if !got.Equal(start.Add(5 * time.Second)) {
			t.Fatalf("fired at %v", got)
		}
	default:
		t.Fatal("timer did not fire")
	}
	if f.Waiters() != 0 {
		t.Fatalf("Waiters = %d after fire", f.Waiters())
	}
}

func TestFakeTimerZeroDurationFiresImmediately(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Unix(0, 0))
	tm := f.NewTimer(0)
	select {
	case <-tm.C():
	default:
		t.Fatal("expected immediate fire")
	}
	if tm.Stop() {
		t.Fatal("Stop on fired timer should report false")
	}
}

func TestFakeTimerStop(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Unix(0, 0))
	tm := f.NewTimer(time.Minute)
	if !tm.Stop() {
		t.Fatal("Stop should report true for pending timer")
	}
	f.Advance(time.Hour)
	select {
	case <-tm.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

func TestFakeSetBackwardsDoesNotFire(t *testing.T) {
	t.Parallel()
	now := time.Unix(1000, 0)
	f := NewFake(now)
	tm := f.NewTimer(time.Second)
	f.Set(now.Add(-time.Hour))
	select {
	case <-tm.C():
		t.Fatal("timer fired after clock stepped back")
	default:
	}
	if !f.BlockUntil(1, time.Second) {
		t.Fatal("BlockUntil should see the pending timer")
	}
}

func TestRealClock(t *testing.T) {
	t.Parallel()
	c := Real()
	tm := c.NewTimer(time.Millisecond)
	select {
	case <-tm.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
	if c.Now().IsZero() {
		t.Fatal("Now returned zero time")
	}
}
