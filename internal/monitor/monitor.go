// Package monitor ingests raw activity signals and buffers them for the
// tracker loop without ever blocking the producer.
package monitor

import (
	"time"

	"github.com/fakeyudi/codeclock/internal/clock"
)

// SignalKind classifies an activity signal.
type SignalKind int

const (
	KindEdit SignalKind = iota
	KindCursor
	KindFocusGained
	KindFocusLost
)

func (k SignalKind) String() string {
	switch k {
	case KindEdit:
		return "edit"
	case KindCursor:
		return "cursor"
	case KindFocusGained:
		return "focus-gained"
	case KindFocusLost:
		return "focus-lost"
	}
	return "unknown"
}

// Signal is one raw activity observation. Signals are never persisted.
type Signal struct {
	At   time.Time
	Kind SignalKind
	Path string // file the activity happened in, when known
}

// bufferSize absorbs editor bursts (save-all, reformat-on-save) between two
// tracker loop iterations.
const bufferSize = 256

// Monitor timestamps signals and queues them for the tracker loop.
type Monitor struct {
	clk clock.Clock
	ch  chan Signal
}

// New returns a Monitor stamping signals with clk.
func New(clk clock.Clock) *Monitor {
	return &Monitor{clk: clk, ch: make(chan Signal, bufferSize)}
}

// Record enqueues sig, stamping it with the current time when At is unset.
// Record never blocks; when the buffer is full the signal is dropped, as
// the queued ones already mark this instant active.
func (m *Monitor) Record(sig Signal) {
	if sig.At.IsZero() {
		sig.At = m.clk.Now()
	}
	select {
	case m.ch <- sig:
	default:
	}
}

// Signals returns the channel the tracker loop consumes.
func (m *Monitor) Signals() <-chan Signal {
	return m.ch
}
