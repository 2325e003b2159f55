// Package clock is the wall-clock source consumed by cycle timers.
//
// The process clock is assumed to be set by an outside step (NTP sync of the
// hardware clock) before any timer is resumed.
package clock

import "time"

// Clock reports the current time and creates timers against it.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the executor needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Real returns the process wall clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer { return realTimer{t: time.NewTimer(d)} }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }
