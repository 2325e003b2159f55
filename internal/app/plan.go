package app

import (
	"time"

	"startstop/internal/cycle"
)

// TaskPlan is the nominal schedule of one task as it would be armed now.
type TaskPlan struct {
	Spec     TaskSpec
	Schedule cycle.Schedule
	Windows  []cycle.Window
}

// scheduleFor turns a task spec into timer parameters. Relative windows
// open delay after now.
func scheduleFor(spec TaskSpec, now time.Time, loc *time.Location) (cycle.Schedule, error) {
	base := cycle.DefaultSchedule()
	base.IntervalMultiplier = spec.Multiplier
	if spec.Absolute() {
		return cycle.ParseStartStop(base, spec.Start, spec.Stop, spec.IntervalText, loc)
	}
	start := now.Add(spec.Delay)
	s := base
	s.Start = start
	s.Stop = start.Add(spec.Window)
	s.Interval = spec.Interval
	s.CyclePeriod = spec.Period
	s.CyclesRemaining = spec.Cycles
	return s, s.Validate()
}

// Plan lists, for every enabled task, the windows it would run in if armed
// at now (at most maxWindows per task; <= 0 means all).
func Plan(cfg *Config, now time.Time, maxWindows int) ([]TaskPlan, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	out := make([]TaskPlan, 0, len(specs))
	for _, spec := range specs {
		s, err := scheduleFor(spec, now.In(loc), loc)
		if err != nil {
			return nil, err
		}
		out = append(out, TaskPlan{Spec: spec, Schedule: s, Windows: s.Plan(maxWindows)})
	}
	return out, nil
}
