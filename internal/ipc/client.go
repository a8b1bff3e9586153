package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/monitor"
	"github.com/fakeyudi/codeclock/internal/stats"
)

const (
	dialTimeout    = 2 * time.Second
	requestTimeout = 5 * time.Second
)

// Client talks to a running tracker. The zero value is not usable; construct
// with NewClient.
type Client struct {
	path string
}

// NewClient returns a Client for the socket at path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// sanitizer keeps request arguments from breaking the line framing.
var sanitizer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// roundTrip sends one request line and decodes the single JSON reply into
// out, which may be nil when only the acknowledgement matters.
func (c *Client) roundTrip(out any, verb string, args ...string) error {
	conn, err := net.DialTimeout("unix", c.path, dialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to tracker: %w", ErrNotRunning)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	line := verb
	for _, a := range args {
		line += "\t" + sanitizer.Replace(a)
	}
	if _, err := fmt.Fprintln(conn, line); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(conn).Decode(&raw); err != nil {
		return fmt.Errorf("reading reply: %w", err)
	}
	var ack Ack
	if err := json.Unmarshal(raw, &ack); err == nil && ack.Error != "" {
		return fmt.Errorf("tracker: %s", ack.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}
	return nil
}

// Signal reports one activity observation to the tracker.
func (c *Client) Signal(kind monitor.SignalKind, path string) error {
	switch kind {
	case monitor.KindEdit:
		return c.roundTrip(nil, verbEdit, path)
	case monitor.KindCursor:
		return c.roundTrip(nil, verbCursor, path)
	case monitor.KindFocusGained:
		return c.roundTrip(nil, verbFocus, "gained")
	case monitor.KindFocusLost:
		return c.roundTrip(nil, verbFocus, "lost")
	}
	return fmt.Errorf("unknown signal kind %d", kind)
}

// Status returns the live session state.
func (c *Client) Status() (StatusReply, error) {
	var reply StatusReply
	err := c.roundTrip(&reply, verbStatus)
	return reply, err
}

// Summary returns the aggregate views computed by the running tracker.
func (c *Client) Summary() (SummaryReply, error) {
	var reply SummaryReply
	err := c.roundTrip(&reply, verbSummary)
	return reply, err
}

// Entries returns persisted entries in [from, to] matching f. Empty bounds
// and filter fields are wildcards.
func (c *Client) Entries(from, to string, f stats.Filter) ([]entry.TimeEntry, error) {
	var reply EntriesReply
	err := c.roundTrip(&reply, verbEntries, from, to, f.Project, f.Branch, f.Language)
	return reply.Entries, err
}
