package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"startstop/internal/cycle"
	logx "startstop/pkg/logx"
)

const (
	ActionLog  = "log"
	ActionExec = "exec"

	DefaultMaxPoll = time.Second
)

var reTaskName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// TaskSpec is a TaskConfig with every field parsed and defaulted.
type TaskSpec struct {
	Name        string
	Action      string
	Message     string
	Command     []string
	Timeout     time.Duration
	Interval    time.Duration
	Multiplier  int
	Delay       time.Duration
	Window      time.Duration
	Period      time.Duration
	Cycles      int
	StackBudget int
	Priority    int

	// Absolute windows keep the raw strings for cycle.Timer.SetCycleStartStop.
	Start        string
	Stop         string
	IntervalText string
}

func (s TaskSpec) Absolute() bool { return s.Start != "" }

// Spec parses and validates one task. loc is used to check absolute dates.
func (t TaskConfig) Spec(loc *time.Location) (TaskSpec, error) {
	p := "tasks." + t.Name
	spec := TaskSpec{
		Name:        t.Name,
		Action:      strings.ToLower(strings.TrimSpace(t.Action)),
		Message:     t.Message,
		Command:     t.Command,
		Multiplier:  t.Multiplier,
		StackBudget: t.StackBudget,
		Priority:    t.Priority,
	}
	if !reTaskName.MatchString(t.Name) {
		return spec, fmt.Errorf("tasks: invalid name %q", t.Name)
	}
	if spec.Action == "" {
		spec.Action = ActionLog
	}
	if spec.Action == ActionExec && (len(t.Command) == 0 || strings.TrimSpace(t.Command[0]) == "") {
		return spec, fmt.Errorf("%s.command: required for action exec", p)
	}
	if spec.Multiplier == 0 {
		spec.Multiplier = 1
	}
	if spec.Multiplier < 1 {
		return spec, fmt.Errorf("%s.multiplier: %w", p, cycle.ErrInvalidMultiplier)
	}
	if spec.StackBudget < 0 || spec.Priority < 0 {
		return spec, fmt.Errorf("%s: stack_budget and priority must be >= 0", p)
	}

	var err error
	if spec.Timeout, err = ParseDurationField(p+".timeout", t.Timeout); err != nil {
		return spec, err
	}
	if spec.Interval, err = ParseIntervalField(p+".interval", t.Interval); err != nil {
		return spec, err
	}

	start, stop := strings.TrimSpace(t.Start), strings.TrimSpace(t.Stop)
	if start != "" || stop != "" {
		if start == "" || stop == "" {
			return spec, fmt.Errorf("%s: start and stop must be set together", p)
		}
		if t.Delay != "" || t.Window != "" || t.Period != "" || t.Cycles != nil {
			return spec, fmt.Errorf("%s: start/stop cannot be combined with delay, window, period or cycles", p)
		}
		if !IsHHMM(t.Interval) {
			return spec, fmt.Errorf("%s.interval: absolute windows take an hh:mm interval", p)
		}
		s, err := cycle.ParseStartStop(cycle.DefaultSchedule(), start, stop, t.Interval, loc)
		if err != nil {
			return spec, fmt.Errorf("%s: %w", p, err)
		}
		spec.Start, spec.Stop, spec.IntervalText = start, stop, strings.TrimSpace(t.Interval)
		spec.Period = s.CyclePeriod
		spec.Cycles = s.CyclesRemaining
		spec.Window = s.Duration()
		return spec, nil
	}

	if spec.Delay, err = ParseDurationField(p+".delay", t.Delay); err != nil {
		return spec, err
	}
	if spec.Window, err = ParseDurationField(p+".window", t.Window); err != nil {
		return spec, err
	}
	if spec.Window <= 0 {
		return spec, fmt.Errorf("%s.window: required for relative windows", p)
	}
	if spec.Period, err = ParsePeriodField(p+".period", t.Period, cycle.DefaultCyclePeriod); err != nil {
		return spec, err
	}
	spec.Cycles = 1
	if t.Cycles != nil {
		spec.Cycles = *t.Cycles
	}
	if spec.Cycles < 0 {
		return spec, fmt.Errorf("%s.cycles: %w", p, cycle.ErrInvalidCycles)
	}
	return spec, nil
}

// Specs parses every enabled task.
func (c *Config) Specs() ([]TaskSpec, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	out := make([]TaskSpec, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.Disabled {
			continue
		}
		s, err := t.Spec(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// MaxPoll returns runtime.max_poll or its default.
func (c *Config) MaxPoll() time.Duration {
	d, err := ParseDurationOrDefault("runtime.max_poll", c.Runtime.MaxPoll, DefaultMaxPoll)
	if err != nil {
		return DefaultMaxPoll
	}
	return d
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() error {
	var errs []error

	loc, err := c.Location()
	if err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
		loc = time.Local
	}
	if lvl := strings.TrimSpace(c.Logging.Level); lvl != "" && !logx.ValidLevel(lvl) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", lvl))
	}
	if c.Logging.File.Enabled && strings.TrimSpace(c.Logging.File.Path) == "" {
		errs = append(errs, errors.New("logging.file.path: required when file logging is enabled"))
	}
	if c.Logging.DebugRatePerSec < 0 {
		errs = append(errs, errors.New("logging.debug_rate_per_sec: must be >= 0"))
	}
	if c.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "none":
		case "file", "sqlite":
			if strings.TrimSpace(c.Storage.Path) == "" {
				errs = append(errs, errors.New("storage.path: required"))
			}
		default:
			errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
		}
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Runtime.MaxTasks < 0 {
		errs = append(errs, errors.New("runtime.max_tasks: must be >= 0"))
	}
	if _, err := ParseDurationField("runtime.max_poll", c.Runtime.MaxPoll); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]struct{}, len(c.Tasks))
	for _, t := range c.Tasks {
		if _, dup := seen[t.Name]; dup {
			errs = append(errs, fmt.Errorf("tasks: duplicate name %q", t.Name))
			continue
		}
		seen[t.Name] = struct{}{}
		if _, err := t.Spec(loc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
