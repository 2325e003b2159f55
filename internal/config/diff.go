package config

import (
	"reflect"
	"sort"
	"strings"

	logx "startstop/pkg/logx"
)

// TaskChanges lists task names by how they differ between two configs.
// Disabling a task counts as removing it.
type TaskChanges struct {
	Added   []string
	Removed []string
	Changed []string
}

func (c TaskChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// SummarizeConfigChange returns (1) a compact list of changed sections,
// (2) structured attrs for logging, and (3) the per-task changes.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, TaskChanges) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	if strings.TrimSpace(oldCfg.Timezone) != strings.TrimSpace(newCfg.Timezone) {
		changed = append(changed, "timezone")
		attrs = append(attrs, logx.String("timezone", strings.TrimSpace(newCfg.Timezone)))
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Int("logging.debug_rate_per_sec", newCfg.Logging.DebugRatePerSec),
		)
	}

	oS, nS := derefStorage(oldCfg.Storage), derefStorage(newCfg.Storage)
	if oS != nS {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", nS.Driver),
			logx.String("storage.path", nS.Path),
		)
	}

	if oldCfg.Runtime != newCfg.Runtime {
		changed = append(changed, "runtime")
		attrs = append(attrs,
			logx.Int("runtime.max_tasks", newCfg.Runtime.MaxTasks),
			logx.String("runtime.max_poll", newCfg.Runtime.MaxPoll),
		)
	}

	tc := diffTasks(oldCfg.Tasks, newCfg.Tasks)
	if !tc.Empty() || !sameTimezone(oldCfg, newCfg) {
		changed = append(changed, "tasks")
		attrs = append(attrs,
			logx.Int("tasks.total", len(newCfg.Tasks)),
			logx.String("tasks.added", strings.Join(tc.Added, ",")),
			logx.String("tasks.removed", strings.Join(tc.Removed, ",")),
			logx.String("tasks.changed", strings.Join(tc.Changed, ",")),
		)
	}

	return changed, attrs, tc
}

func diffTasks(oldTasks, newTasks []TaskConfig) TaskChanges {
	index := func(ts []TaskConfig) map[string]TaskConfig {
		m := make(map[string]TaskConfig, len(ts))
		for _, t := range ts {
			if !t.Disabled {
				m[t.Name] = t
			}
		}
		return m
	}
	om, nm := index(oldTasks), index(newTasks)

	var tc TaskChanges
	for name, nt := range nm {
		ot, ok := om[name]
		switch {
		case !ok:
			tc.Added = append(tc.Added, name)
		case !reflect.DeepEqual(ot, nt):
			tc.Changed = append(tc.Changed, name)
		}
	}
	for name := range om {
		if _, ok := nm[name]; !ok {
			tc.Removed = append(tc.Removed, name)
		}
	}
	sort.Strings(tc.Added)
	sort.Strings(tc.Removed)
	sort.Strings(tc.Changed)
	return tc
}

// sameTimezone is false when absolute windows must be re-read.
func sameTimezone(a, b *Config) bool {
	return strings.TrimSpace(a.Timezone) == strings.TrimSpace(b.Timezone)
}

func derefStorage(s *StorageConfig) StorageConfig {
	if s == nil {
		return StorageConfig{}
	}
	return *s
}
