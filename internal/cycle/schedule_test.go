package cycle

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultSchedule(t *testing.T) {
	t.Parallel()

	s := DefaultSchedule()
	if s.Start.Unix() != 0 || s.Stop.Unix() != 0 {
		t.Fatalf("window=%v..%v want epoch", s.Start, s.Stop)
	}
	if s.Interval != time.Second || s.IntervalMultiplier != 1 || s.CyclePeriod != 24*time.Hour || s.CyclesRemaining != 1 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestSchedule_ValidateJoinsErrors(t *testing.T) {
	t.Parallel()

	s := Schedule{Interval: 0, IntervalMultiplier: 0, CyclePeriod: -time.Second, CyclesRemaining: -1}
	err := s.Validate()
	for _, want := range []error{ErrInvalidInterval, ErrInvalidMultiplier, ErrInvalidPeriod, ErrInvalidCycles} {
		if !errors.Is(err, want) {
			t.Fatalf("missing %v in %v", want, err)
		}
	}
}

func TestSchedule_WindowHelpers(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2023, 6, 5, 9, 0, 0, 0, time.UTC)
	s := Schedule{Start: t0, Stop: t0.Add(10 * time.Second), Interval: 2 * time.Second, IntervalMultiplier: 3, CyclePeriod: 30 * time.Second, CyclesRemaining: 3}

	if s.Step() != 6*time.Second {
		t.Fatalf("step=%v", s.Step())
	}
	if !s.Contains(t0) || s.Contains(t0.Add(10*time.Second)) || s.Contains(t0.Add(-time.Nanosecond)) {
		t.Fatalf("window must be [start, stop)")
	}
	if s.Inverted() || s.Overlapping() {
		t.Fatalf("unexpected inverted/overlapping")
	}

	plan := s.Plan(0)
	if len(plan) != 3 {
		t.Fatalf("plan len=%d", len(plan))
	}
	if !plan[2].Start.Equal(t0.Add(60*time.Second)) || !plan[2].Stop.Equal(t0.Add(70*time.Second)) {
		t.Fatalf("plan[2]=%+v", plan[2])
	}
	if got := s.Plan(2); len(got) != 2 {
		t.Fatalf("capped plan len=%d", len(got))
	}

	s.CyclePeriod = 5 * time.Second
	if !s.Overlapping() {
		t.Fatalf("expected overlapping window")
	}
	s.Stop = t0.Add(-time.Second)
	if !s.Inverted() {
		t.Fatalf("expected inverted window")
	}
}
