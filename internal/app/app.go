package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"startstop/internal/clock"
	"startstop/internal/cycle"
	"startstop/internal/eventbus"
	"startstop/internal/storage"
	logx "startstop/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *ConfigManager
	sup  *Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store
	clock clock.Clock

	mu      sync.Mutex
	loc     *time.Location
	timers  map[string]*cycle.Timer
	actions map[string]ActionFactory
}

type Option func(*App)

// WithClock replaces the wall clock used by every timer and action.
func WithClock(c clock.Clock) Option {
	return func(a *App) {
		if c != nil {
			a.clock = c
		}
	}
}

func NewApp(cfgPath string, opts ...Option) (*App, error) {
	cfgm := NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg))
	log = log.With(logx.String("comp", "app"))

	// Storage (optional)
	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		_ = logSvc.Close()
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		store = st
		log.Info("storage enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	a := &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     eventbus.New(),
		store:   store,
		clock:   clock.Real(),
		loc:     loc,
		timers:  map[string]*cycle.Timer{},
		actions: builtinActions(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// RegisterAction adds or replaces an action. Call it before Start.
func (a *App) RegisterAction(name string, f ActionFactory) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions[name] = f
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgm.Get()
	a.sup = NewSupervisor(ctx,
		WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		WithCancelOnError(true),
		WithMaxActive(cfg.Runtime.MaxTasks),
	)

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, next *Config) error {
		specs, err := next.Specs()
		if err != nil {
			return err
		}
		return a.checkActions(specs)
	})

	specs, err := cfg.Specs()
	if err != nil {
		return err
	}
	if err := a.checkActions(specs); err != nil {
		return err
	}

	// The journal subscribes before any timer exists so no state event is missed.
	events, unsub := a.bus.Subscribe(256)
	a.sup.Go0("journal", func(c context.Context) {
		defer unsub()
		recordJournal(c, events, a.store, a.log.With(logx.String("comp", "journal")))
	})

	for _, spec := range specs {
		if err := a.arm(spec, cfg); err != nil {
			a.sup.Cancel()
			return fmt.Errorf("task %s: %w", spec.Name, err)
		}
	}

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub, cfg)
	})

	// A failing watcher is restarted instead of taking the app down.
	a.sup.GoRestart("config.watch", a.cfgm.Watch, 250*time.Millisecond, 5*time.Second)

	a.log.Info("app started", logx.Int("tasks", len(specs)))
	return nil
}

func (a *App) checkActions(specs []TaskSpec) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	for _, s := range specs {
		if _, ok := a.actions[s.Action]; !ok {
			errs = append(errs, fmt.Errorf("tasks.%s.action: unknown action %q", s.Name, s.Action))
		}
	}
	return errors.Join(errs...)
}

// arm (re)creates the executor of one task from spec and lets it run.
func (a *App) arm(spec TaskSpec, cfg *Config) error {
	a.mu.Lock()
	factory := a.actions[spec.Action]
	loc := a.loc
	t := a.timers[spec.Name]
	if t == nil {
		t = cycle.New(spec.Name,
			cycle.WithClock(a.clock),
			cycle.WithLogger(a.log.With(logx.String("comp", "cycle"))),
			cycle.WithBus(a.bus),
			cycle.WithSpawner(a.sup),
			cycle.WithLocation(loc),
			cycle.WithMaxPoll(cfg.MaxPoll()),
		)
		a.timers[spec.Name] = t
	}
	a.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("unknown action %q", spec.Action)
	}
	cb, err := factory(spec, ActionDeps{
		Context: a.sup.Context(),
		Log:     a.log.With(logx.String("comp", "action"), logx.String("task", spec.Name)),
		Clock:   a.clock,
	})
	if err != nil {
		return err
	}

	if spec.Absolute() {
		if err := t.SetIntervalMultiplier(spec.Multiplier); err != nil {
			return err
		}
		if err := t.SetCycleStartStop(spec.Start, spec.Stop, spec.IntervalText); err != nil {
			return err
		}
	} else {
		sched, err := scheduleFor(spec, a.clock.Now(), loc)
		if err != nil {
			return err
		}
		if err := t.SetSchedule(sched); err != nil {
			return err
		}
	}

	if err := t.Init(cb, spec.StackBudget, spec.Priority); err != nil {
		return err
	}
	return t.Resume()
}

// disarm deletes the executor of a task and waits briefly for it to exit so
// its slot under runtime.max_tasks is released.
func (a *App) disarm(ctx context.Context, name string, forget bool) {
	a.mu.Lock()
	t := a.timers[name]
	if forget {
		delete(a.timers, name)
	}
	a.mu.Unlock()
	if t == nil {
		return
	}
	h := t.Handle()
	if err := t.DeleteTask(); err != nil {
		if !cycle.IsLifecycleError(err) {
			a.log.Warn("task delete failed", logx.String("task", name), logx.Err(err))
		} else {
			a.log.Debug("task already gone", logx.String("task", name), logx.Err(err))
		}
	}
	if h == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	select {
	case <-h.Done():
	case <-wctx.Done():
		a.log.Warn("task did not exit in time", logx.String("task", name))
	}
}

// Timer returns the timer of a task, if any.
func (a *App) Timer(name string) (*cycle.Timer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.timers[name]
	return t, ok
}

// Status reports every known timer, sorted by name.
func (a *App) Status() []TimerStatus {
	a.mu.Lock()
	ts := make([]*cycle.Timer, 0, len(a.timers))
	for _, t := range a.timers {
		ts = append(ts, t)
	}
	a.mu.Unlock()

	out := make([]TimerStatus, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Journal returns the newest n journal records of task ("" for all tasks).
func (a *App) Journal(ctx context.Context, task string, n int) ([]storage.Record, error) {
	if a.store == nil {
		return nil, storage.ErrDisabled
	}
	return a.store.Recent(ctx, task, n)
}

// Supervisor exposes goroutine accounting for diagnostics.
func (a *App) Supervisor() SupervisorSnapshot {
	if a.sup == nil {
		return SupervisorSnapshot{}
	}
	return a.sup.Snapshot()
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")

	// Helper: run a shutdown step with an upper bound so one component can't stall the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		a.log.Debug("stop step begin", logx.String("name", name), logx.Duration("max", max))

		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			// respect the caller's deadline; never extend it
			if dl, ok := ctx.Deadline(); ok {
				rem := time.Until(dl)
				if rem <= 0 {
					max = 0
				} else if rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			took := time.Since(start)
			if took >= 500*time.Millisecond {
				a.log.Info("stop step end", logx.String("name", name), logx.Duration("took", took))
			} else {
				a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", took))
			}
		case <-stepCtx.Done():
			// fn must honor stepCtx; if it doesn't, log when it eventually returns.
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Err(stepCtx.Err()),
				logx.Duration("elapsed", time.Since(start)),
			)
			go func() {
				err := <-done
				a.log.Warn("stop step finished after deadline", logx.String("name", name), logx.Err(err), logx.Duration("took", time.Since(start)))
			}()
		}
	}

	// Delete timers first so no callback starts while the rest unwinds.
	step("tasks", 3*time.Second, func(c context.Context) error {
		a.mu.Lock()
		names := make([]string, 0, len(a.timers))
		for name := range a.timers {
			names = append(names, name)
		}
		a.mu.Unlock()
		for _, name := range names {
			a.disarm(c, name, false)
		}
		return nil
	})

	a.sup.Cancel()
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })
	step("storage", time.Second, func(c context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

func mapLoggingConfig(cfg *Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		DebugRatePerSec: cfg.Logging.DebugRatePerSec,
	}
}
