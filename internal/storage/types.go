package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the journal.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Entry is one journal row. Keep it compact and schema-stable.
type Entry struct {
	At      time.Time
	Kind    string // "status" | "failure" | "delivery" | "delivery_failed"
	ChatID  int64
	Verdict string
	Text    string
	Error   string
}
