package app

import (
	"context"
	"fmt"
	"time"

	"startstop/internal/eventbus"
	"startstop/internal/storage"
	logx "startstop/pkg/logx"
)

const journalWriteTimeout = 2 * time.Second

// recordJournal drains timer events into the store until ctx is done. With no
// store it only logs the events at debug level.
func recordJournal(ctx context.Context, events <-chan eventbus.Event, store storage.Store, log logx.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			// Keep this debug-level to avoid noise for fast schedules.
			log.Debug("event", logx.String("type", e.Type), logx.String("task", e.Task), logx.Time("time", e.Time))
			if store == nil {
				continue
			}
			r, ok := toRecord(e)
			if !ok {
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, journalWriteTimeout)
			if err := store.Append(wctx, r); err != nil {
				log.Warn("journal append failed", logx.String("task", e.Task), logx.Err(err))
			}
			cancel()
		}
	}
}

func toRecord(e eventbus.Event) (storage.Record, bool) {
	r := storage.Record{At: e.Time, Task: e.Task}
	switch d := e.Data.(type) {
	case eventbus.StateChange:
		r.Kind = storage.KindState
		r.Detail = d.From + "->" + d.To
	case eventbus.Invocation:
		r.Kind = storage.KindInvoke
		r.Cycle = d.Cycle
		r.Seq = d.Seq
		r.TookMS = d.Took.Milliseconds()
		r.Panicked = d.Panicked
	case eventbus.Advance:
		r.Kind = storage.KindAdvance
		r.Cycle = d.Cycle
		r.Detail = fmt.Sprintf("remaining=%d next=%s..%s", d.Remaining, d.Start.Format(time.RFC3339), d.Stop.Format(time.RFC3339))
	case eventbus.Done:
		r.Kind = storage.KindDone
		r.Cycle = d.Cycles
		r.Detail = fmt.Sprintf("invocations=%d", d.Invocations)
	default:
		return storage.Record{}, false
	}
	return r, true
}
