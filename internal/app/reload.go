package app

import (
	"context"
	"strings"

	logx "startstop/pkg/logx"
)

// reloadLoop applies published configs until ctx is done. Bursts are
// coalesced so only the newest config is applied.
func (a *App) reloadLoop(ctx context.Context, sub chan *Config, lastApplied *Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config in the channel.
		drain:
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					break drain
				}
			}
			if newCfg == nil {
				continue
			}
			a.apply(ctx, lastApplied, newCfg)
			lastApplied = newCfg
		}
	}
}

func (a *App) apply(ctx context.Context, oldCfg, newCfg *Config) {
	sections, attrs, tasks := SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	a.log.Debug("config change summary", append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)...)

	for _, s := range sections {
		if s == "storage" {
			a.log.Warn("storage config changed; restart required for changes to take effect")
		}
		if s == "runtime" && oldCfg.Runtime.MaxTasks != newCfg.Runtime.MaxTasks {
			a.log.Warn("runtime.max_tasks changed; restart required for changes to take effect")
		}
	}

	a.logs.Apply(mapLoggingConfig(newCfg))

	specs, err := newCfg.Specs()
	if err != nil {
		// The validator already ran; this only happens if it was bypassed.
		a.log.Warn("invalid tasks in reloaded config; keeping previous", logx.Err(err))
		return
	}
	rearm := make(map[string]bool, len(tasks.Added)+len(tasks.Changed))
	for _, name := range tasks.Added {
		rearm[name] = true
	}
	for _, name := range tasks.Changed {
		rearm[name] = true
	}

	// A new timezone moves every absolute window; those timers are rebuilt
	// so they parse dates in the new location.
	if loc, err := newCfg.Location(); err == nil {
		a.mu.Lock()
		tzChanged := loc.String() != a.loc.String()
		a.loc = loc
		a.mu.Unlock()
		if tzChanged {
			for _, s := range specs {
				if s.Absolute() {
					a.disarm(ctx, s.Name, true)
					rearm[s.Name] = true
				}
			}
		}
	}
	if oldCfg.Runtime.MaxPoll != newCfg.Runtime.MaxPoll {
		// Poll granularity is fixed per timer; rebuild running ones.
		for _, s := range specs {
			if _, ok := a.Timer(s.Name); ok && !rearm[s.Name] {
				a.disarm(ctx, s.Name, true)
				rearm[s.Name] = true
			}
		}
	}

	for _, name := range tasks.Removed {
		a.disarm(ctx, name, true)
		a.log.Info("task removed", logx.String("task", name))
	}
	for _, s := range specs {
		if !rearm[s.Name] {
			continue
		}
		a.disarm(ctx, s.Name, false)
		if err := a.arm(s, newCfg); err != nil {
			a.log.Error("task re-arm failed", logx.String("task", s.Name), logx.Err(err))
			continue
		}
		a.log.Info("task armed", logx.String("task", s.Name))
	}

	a.log.Info("config reloaded", append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)...)
}
