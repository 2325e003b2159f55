package cycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the accepted layout for window boundaries.
const DateTimeLayout = "2006-01-02 15:04"

var (
	reDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)
	reHHMM     = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// ParseDateTime parses "YYYY-MM-DD hh:mm" in loc (time.Local when nil).
// Ranges are enforced: month 1-12, a day that exists in that month, hour
// 0-23, minute 0-59.
func ParseDateTime(field, raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	if !reDateTime.MatchString(s) {
		return time.Time{}, &ParseError{Field: field, Input: raw, Err: fmt.Errorf("%w: want %q", ErrMalformedTime, "YYYY-MM-DD hh:mm")}
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Input: raw, Err: fmt.Errorf("%w: %v", ErrMalformedTime, err)}
	}
	return t, nil
}

// ParseInterval parses "hh:mm" into a duration. Minutes must be 0-59 and the
// result must be positive.
func ParseInterval(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	m := reHHMM.FindStringSubmatch(s)
	if len(m) != 3 {
		return 0, &ParseError{Field: "interval", Input: raw, Err: fmt.Errorf("%w: want %q", ErrMalformedTime, "hh:mm")}
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if mm > 59 {
		return 0, &ParseError{Field: "interval", Input: raw, Err: fmt.Errorf("%w: minutes out of range", ErrMalformedTime)}
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if d <= 0 {
		return 0, &ParseError{Field: "interval", Input: raw, Err: ErrInvalidInterval}
	}
	return d, nil
}

// DailyCycles is the number of one-day cycles needed to cover [start, stop],
// counting a partial final day: 1 + floor((stop-start) / 86400s).
func DailyCycles(start, stop time.Time) int {
	const day = int64(24 * 60 * 60)
	return 1 + int((stop.Unix()-start.Unix())/day)
}

// ParseStartStop derives a daily schedule from two date/time strings and an
// "hh:mm" interval, based on base (whose multiplier is kept). The cycle period
// is fixed at one day.
func ParseStartStop(base Schedule, startText, stopText, intervalText string, loc *time.Location) (Schedule, error) {
	interval, err := ParseInterval(intervalText)
	if err != nil {
		return base, err
	}
	start, err := ParseDateTime("start", startText, loc)
	if err != nil {
		return base, err
	}
	stop, err := ParseDateTime("stop", stopText, loc)
	if err != nil {
		return base, err
	}
	if stop.Before(start) {
		return base, fmt.Errorf("%w: %s > %s", ErrInvertedWindow, start.Format(DateTimeLayout), stop.Format(DateTimeLayout))
	}

	s := base
	s.Start = start
	s.Stop = stop
	s.Interval = interval
	s.CyclePeriod = DefaultCyclePeriod
	s.CyclesRemaining = DailyCycles(start, stop)
	return s, nil
}
