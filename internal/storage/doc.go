// Package storage keeps the run journal: an append-only record of timer
// state changes, callback invocations and cycle advances.
//
// The journal is an audit trail. Timers never read it back, so schedules do
// not survive a restart.
package storage
