package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"startstop/internal/cycle"
)

var reHHMM = regexp.MustCompile(`^\s*\d{2}:\d{2}\s*$`)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// ParseIntervalField accepts "hh:mm" or a Go duration ("1s", "2m30s"). The
// result must be positive.
func ParseIntervalField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%s: required", path)
	}
	if reHHMM.MatchString(s) {
		d, err := cycle.ParseInterval(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid interval %q (use hh:mm or a Go duration like '2s')", path, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: %w", path, cycle.ErrInvalidInterval)
	}
	return d, nil
}

// IsHHMM reports whether raw is in "hh:mm" form.
func IsHHMM(raw string) bool { return reHHMM.MatchString(raw) }
