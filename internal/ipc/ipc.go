// Package ipc connects editor plugins and CLI commands to the running
// tracker over a unix domain socket.
//
// Requests are single tab-separated lines; every request is answered with a
// single line of JSON. Signal lines ("edit", "cursor", "focus") feed the
// activity monitor, query lines ("status", "summary", "entries") read the
// tracker's published snapshot and the entry store.
package ipc

import (
	"errors"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/stats"
)

// ErrNotRunning reports that no tracker answered on the socket.
var ErrNotRunning = errors.New("tracker is not running")

// ErrAlreadyRunning reports that a live tracker already owns the socket.
var ErrAlreadyRunning = errors.New("tracker is already running")

const (
	verbEdit    = "edit"
	verbCursor  = "cursor"
	verbFocus   = "focus"
	verbStatus  = "status"
	verbSummary = "summary"
	verbEntries = "entries"
)

// Ack acknowledges signal requests and carries errors for any request.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// StatusReply describes the live session.
type StatusReply struct {
	State          string    `json:"state"`
	Project        string    `json:"project"`
	Branch         string    `json:"branch"`
	Language       string    `json:"language"`
	Date           string    `json:"date"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	PendingSeconds float64   `json:"pending_seconds"`
	TodayMinutes   float64   `json:"today_minutes"`
	ProjectMinutes float64   `json:"project_minutes"`
}

// SummaryReply carries the aggregate views the report and dashboard
// commands render.
type SummaryReply struct {
	Rollup  stats.Rollup      `json:"rollup"`
	Streak  stats.Streak      `json:"streak"`
	Summary stats.SummaryData `json:"summary"`
}

// EntriesReply carries a filtered entry listing.
type EntriesReply struct {
	Entries []entry.TimeEntry `json:"entries"`
}
