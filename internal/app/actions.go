package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"startstop/internal/clock"
	"startstop/internal/config"
	logx "startstop/pkg/logx"
)

// ActionDeps is what an action factory may capture in its callback.
type ActionDeps struct {
	// Context is canceled when the app stops.
	Context context.Context
	Log     logx.Logger
	Clock   clock.Clock
}

// ActionFactory builds the callback for one task. It is called every time the
// task is armed, including after a hot reload.
type ActionFactory func(spec TaskSpec, deps ActionDeps) (Callback, error)

const maxOutputLog = 512

func builtinActions() map[string]ActionFactory {
	return map[string]ActionFactory{
		config.ActionLog:  logAction,
		config.ActionExec: execAction,
	}
}

// logAction writes one line per invocation with the wall-clock time.
func logAction(spec TaskSpec, deps ActionDeps) (Callback, error) {
	msg := strings.TrimSpace(spec.Message)
	if msg == "" {
		msg = spec.Name
	}
	var n atomic.Uint64
	return func() {
		deps.Log.Info(msg, logx.Time("now", deps.Clock.Now()), logx.Uint64("n", n.Add(1)))
	}, nil
}

// execAction runs an external command per invocation, bounded by the task
// timeout. The timer's interval counts from the command's exit.
func execAction(spec TaskSpec, deps ActionDeps) (Callback, error) {
	if len(spec.Command) == 0 || strings.TrimSpace(spec.Command[0]) == "" {
		return nil, errors.New("exec: empty command")
	}
	argv := append([]string(nil), spec.Command...)
	timeout := spec.Timeout
	return func() {
		ctx := deps.Context
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := deps.Clock.Now()
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		// Children that outlive a killed command must not hold the pipes open.
		cmd.WaitDelay = time.Second
		out, err := cmd.CombinedOutput()
		took := deps.Clock.Now().Sub(start)
		fields := []logx.Field{
			logx.String("cmd", argv[0]),
			logx.Duration("took", took),
			logx.String("output", truncate(strings.TrimSpace(string(out)), maxOutputLog)),
		}
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("timed out after %s: %w", timeout, err)
			}
			deps.Log.Warn("command failed", append(fields, logx.Err(err))...)
			return
		}
		deps.Log.Info("command done", fields...)
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
