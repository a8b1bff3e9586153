// Package entry defines the persisted time-entry model shared by the store,
// the tracker and the aggregation layer.
package entry

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format for TimeEntry.Date and all
// date-range parameters. Lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

// Unknown is the sentinel used when branch or language detection fails.
// Attribution must never block on a failing context provider.
const Unknown = "unknown"

// MaxDayMinutes is the hard cap on minutes a single entry may hold for one
// calendar date.
const MaxDayMinutes = 1440

// ErrOutOfRange is returned when a delta, or the total a merge would
// produce, falls outside [0, MaxDayMinutes]. Out-of-range values surface
// clock skew or bugs and are rejected, never clamped.
var ErrOutOfRange = errors.New("minutes outside [0, 1440]")

// TimeEntry is one persisted accrual bucket. Entries are immutable once
// written; repeated flushes on the same natural key merge additively.
type TimeEntry struct {
	Date     string  `json:"date"` // DateLayout
	Project  string  `json:"project"`
	Branch   string  `json:"branch"`
	Language string  `json:"language"`
	Minutes  float64 `json:"time_spent_minutes"`
}

// Key is the natural merge key of a TimeEntry.
type Key struct {
	Date     string
	Project  string
	Branch   string
	Language string
}

// Key returns the entry's natural merge key.
func (e TimeEntry) Key() Key {
	return Key{Date: e.Date, Project: e.Project, Branch: e.Branch, Language: e.Language}
}

// Normalized returns a copy with empty branch/language replaced by Unknown,
// so every persisted entry carries a complete key.
func (e TimeEntry) Normalized() TimeEntry {
	if e.Branch == "" {
		e.Branch = Unknown
	}
	if e.Language == "" {
		e.Language = Unknown
	}
	return e
}

// Validate checks the entry invariants: a parseable date, a non-empty
// project, and minutes inside [0, MaxDayMinutes].
func (e TimeEntry) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("bad entry date %q: %w", e.Date, err)
	}
	if e.Project == "" {
		return errors.New("entry has no project")
	}
	if e.Minutes < 0 || e.Minutes > MaxDayMinutes {
		return fmt.Errorf("%.2f minutes on %s: %w", e.Minutes, e.Date, ErrOutOfRange)
	}
	return nil
}

// DateOf formats t as a calendar date in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout string at midnight local time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
