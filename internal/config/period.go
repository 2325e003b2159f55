package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// periodRef is where cron periods are sampled; a fixed UTC instant keeps the
// result independent of the host zone and its DST rules.
var periodRef = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

const periodSamples = 6

var periodParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParsePeriodField parses a cycle period. Accepted forms:
//   - Go duration: "30s", "24h"
//   - hh:mm: "02:30"
//   - cron descriptors: "@hourly", "@daily", "@midnight", "@weekly", "@every 90m"
//   - a cron expression whose firings are evenly spaced: "*/15 * * * *"
//
// Empty means def.
func ParsePeriodField(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	if IsHHMM(s) {
		return ParseIntervalField(path, s)
	}
	if strings.HasPrefix(s, "@") || strings.ContainsAny(s, " \t") {
		d, err := cronPeriod(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid period %q (use a duration like '24h', hh:mm, or '@daily')", path, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: period must be > 0", path)
	}
	return d, nil
}

// cronPeriod derives a fixed period from a cron schedule by sampling
// consecutive activations. Irregular schedules (e.g. weekdays only) have no
// single period and are rejected.
func cronPeriod(expr string) (time.Duration, error) {
	spec := expr
	if !strings.HasPrefix(spec, "TZ=") && !strings.HasPrefix(spec, "CRON_TZ=") {
		spec = "CRON_TZ=UTC " + spec
	}
	sched, err := periodParser.Parse(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid cron period %q: %w", expr, err)
	}
	if c, ok := sched.(cron.ConstantDelaySchedule); ok {
		return c.Delay, nil
	}

	prev := sched.Next(periodRef)
	if prev.IsZero() {
		return 0, fmt.Errorf("cron period %q never fires", expr)
	}
	var period time.Duration
	for i := 0; i < periodSamples; i++ {
		next := sched.Next(prev)
		if next.IsZero() {
			return 0, fmt.Errorf("cron period %q never fires", expr)
		}
		gap := next.Sub(prev)
		if period != 0 && gap != period {
			return 0, fmt.Errorf("cron period %q is not evenly spaced (%s then %s)", expr, period, gap)
		}
		period = gap
		prev = next
	}
	return period, nil
}
