// Package tracker owns the tracking session state machine. A single
// goroutine consumes activity signals, branch updates and flush ticks,
// accrues coding time while the session is active and persists it as
// merged time entries.
package tracker

import (
	"time"

	"github.com/fakeyudi/codeclock/internal/collector"
)

// State is the session's activity state.
type State int

const (
	// StateActive means time is accruing.
	StateActive State = iota
	// StatePaused means the user went idle or lost editor focus and
	// time is not accruing.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Session is the mutable tracking state. It is owned exclusively by the
// tracker's run loop; other goroutines read it through snapshots.
type Session struct {
	// ID identifies the current segment. A new ID is minted whenever
	// the context changes or the day rolls over.
	ID string

	State   State
	Context collector.Context

	// Date is the day the accumulator belongs to, in YYYY-MM-DD form.
	// Accrued seconds are always flushed under this date, so time
	// gathered before midnight never leaks into the next day.
	Date string

	StartedAt      time.Time
	LastActivityAt time.Time

	// LastFocusLostAt is set when the editor reports losing focus and
	// cleared by any engagement signal. While set, the focus grace
	// timeout governs pausing instead of the inactivity timeout.
	LastFocusLostAt *time.Time

	// AccumulatedSeconds is coding time accrued but not yet persisted.
	AccumulatedSeconds float64

	// LastFlushAt is the accrual checkpoint. It advances on every tick,
	// including while paused, so that resumed sessions never count the
	// paused stretch.
	LastFlushAt time.Time
}
