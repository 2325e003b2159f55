package cycle

import (
	"errors"
	"time"
)

const (
	DefaultInterval    = time.Second
	DefaultCyclePeriod = 24 * time.Hour
)

// Schedule is the parameter record of one windowed-cycle timer.
//
// Start is inclusive, Stop exclusive. Stop before Start is legal: that cycle
// produces no invocations but its boundaries still advance.
type Schedule struct {
	Start              time.Time
	Stop               time.Time
	Interval           time.Duration
	IntervalMultiplier int
	CyclePeriod        time.Duration
	CyclesRemaining    int
}

// Window is one cycle's [Start, Stop) range.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// DefaultSchedule returns the safe defaults: an empty window at the epoch,
// a 1s interval, multiplier 1, a one-day period and a single cycle.
func DefaultSchedule() Schedule {
	epoch := time.Unix(0, 0)
	return Schedule{
		Start:              epoch,
		Stop:               epoch,
		Interval:           DefaultInterval,
		IntervalMultiplier: 1,
		CyclePeriod:        DefaultCyclePeriod,
		CyclesRemaining:    1,
	}
}

// Step is the delay between the return of one invocation and the window
// check for the next one.
func (s Schedule) Step() time.Duration {
	return s.Interval * time.Duration(s.IntervalMultiplier)
}

// Duration is the window length; negative for an inverted window.
func (s Schedule) Duration() time.Duration { return s.Stop.Sub(s.Start) }

func (s Schedule) Inverted() bool { return s.Stop.Before(s.Start) }

// Overlapping reports whether one cycle's window runs into the next one.
func (s Schedule) Overlapping() bool { return s.CyclePeriod < s.Duration() }

// Contains reports whether t falls inside the current window.
func (s Schedule) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.Stop)
}

// Validate checks the fields the executor depends on to make progress.
func (s Schedule) Validate() error {
	var errs []error
	if s.Interval <= 0 {
		errs = append(errs, ErrInvalidInterval)
	}
	if s.IntervalMultiplier < 1 {
		errs = append(errs, ErrInvalidMultiplier)
	}
	if s.CyclePeriod <= 0 {
		errs = append(errs, ErrInvalidPeriod)
	}
	if s.CyclesRemaining < 0 {
		errs = append(errs, ErrInvalidCycles)
	}
	return errors.Join(errs...)
}

// Plan lists the nominal windows of the remaining cycles, at most limit of
// them (limit <= 0 means all). At run time each start is snapped to the actual
// wall-clock time it was reached, so later windows may drift from the plan.
func (s Schedule) Plan(limit int) []Window {
	n := s.CyclesRemaining
	if limit > 0 && n > limit {
		n = limit
	}
	if n <= 0 {
		return nil
	}
	out := make([]Window, 0, n)
	start, stop := s.Start, s.Stop
	for i := 0; i < n; i++ {
		out = append(out, Window{Start: start, Stop: stop})
		start = start.Add(s.CyclePeriod)
		stop = stop.Add(s.CyclePeriod)
	}
	return out
}

func (s *Schedule) advance() {
	s.Start = s.Start.Add(s.CyclePeriod)
	s.Stop = s.Stop.Add(s.CyclePeriod)
}
