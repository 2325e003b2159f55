// Package cycle implements the start/stop windowed-cycle timer.
//
// A Timer owns one Schedule: a [start, stop) window, an invocation interval
// (scaled by an integer multiplier), a cycle period and a number of cycles.
// Once initialized and resumed, the timer's unit of execution (a goroutine
// obtained from a Spawner):
//
//  1. waits until the wall clock reaches start,
//  2. snaps start to the actual wall-clock time,
//  3. invokes the callback, then sleeps interval*multiplier, for as long as
//     the wall clock is before stop (the check happens before each call),
//  4. moves start and stop forward by the cycle period,
//
// and repeats for the configured number of cycles before terminating itself.
//
// Lifecycle: Uninitialized -> Suspended (Init) -> Running (Resume) <->
// Suspended (Suspend) -> Terminated (DeleteTask or natural completion).
// A terminated timer is re-armed by calling Init again. Setters return
// ErrActive while the timer is Running; a change made while Suspended is
// picked up by the executor when it is resumed.
package cycle
