package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrClosed   = errors.New("storage closed")
)

const DefaultMaxRecords = 10000

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file, compacted in place
//   - "sqlite": SQLite database file (modernc.org/sqlite, no cgo)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	// MaxRecords bounds the journal; older records are pruned. 0 means
	// DefaultMaxRecords.
	MaxRecords int
}

// Record kinds.
const (
	KindState   = "state"
	KindInvoke  = "invoke"
	KindAdvance = "advance"
	KindDone    = "done"
)

// Record is one journal line. Keep it compact and schema-stable.
type Record struct {
	At       time.Time `json:"at"`
	Task     string    `json:"task"`
	Kind     string    `json:"kind"`
	Cycle    int       `json:"cycle,omitempty"`
	Seq      uint64    `json:"seq,omitempty"`
	TookMS   int64     `json:"took_ms,omitempty"`
	Panicked bool      `json:"panicked,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Store is the journal API used by the app.
type Store interface {
	Append(ctx context.Context, r Record) error
	// Recent returns up to n records, newest first. An empty task matches
	// every task.
	Recent(ctx context.Context, task string, n int) ([]Record, error)
	Close() error
}
