package config

import (
	"strings"
	"time"
	_ "time/tzdata" // IANA zones on devices without /usr/share/zoneinfo
)

type Config struct {
	// Timezone is the IANA zone absolute task windows are read in.
	// Empty means the process local zone.
	Timezone string         `json:"timezone,omitempty"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
	Runtime  RuntimeConfig  `json:"runtime"`
	Tasks    []TaskConfig   `json:"tasks"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
	// DebugRatePerSec caps debug/trace lines per second. 0 disables the cap.
	DebugRatePerSec int `json:"debug_rate_per_sec,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the optional run journal.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./startstop.db" }
type StorageConfig struct {
	Driver      string `json:"driver"` // none | file | sqlite
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// RuntimeConfig bounds the executors.
//
// Defaults (when fields are omitted/zero):
//   - max_tasks: 0 (unlimited)
//   - max_poll: "1s"
type RuntimeConfig struct {
	MaxTasks int    `json:"max_tasks,omitempty"`
	MaxPoll  string `json:"max_poll,omitempty"`
}

// TaskConfig describes one windowed-cycle task.
//
// A window is either relative (delay/window/period/cycles, counted from the
// moment the task is armed) or absolute (start/stop in "YYYY-MM-DD hh:mm" with
// an "hh:mm" interval; one cycle per day is derived from the dates).
type TaskConfig struct {
	Name   string `json:"name"`
	Action string `json:"action,omitempty"` // log | exec | registered name

	Message string   `json:"message,omitempty"`
	Command []string `json:"command,omitempty"`
	Timeout string   `json:"timeout,omitempty"`

	Interval   string `json:"interval"`
	Multiplier int    `json:"multiplier,omitempty"`

	Delay  string `json:"delay,omitempty"`
	Window string `json:"window,omitempty"`
	Period string `json:"period,omitempty"`
	Cycles *int   `json:"cycles,omitempty"`

	Start string `json:"start,omitempty"`
	Stop  string `json:"stop,omitempty"`

	StackBudget int  `json:"stack_budget,omitempty"`
	Priority    int  `json:"priority,omitempty"`
	Disabled    bool `json:"disabled,omitempty"`
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// Task returns the task with the given name.
func (c *Config) Task(name string) (TaskConfig, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskConfig{}, false
}
