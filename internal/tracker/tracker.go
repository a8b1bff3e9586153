package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/codeclock/internal/clock"
	"github.com/fakeyudi/codeclock/internal/collector"
	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/monitor"
	"github.com/fakeyudi/codeclock/internal/stats"
	"github.com/fakeyudi/codeclock/internal/store"
)

// Timeout bounds enforced by New. Out-of-range values would produce
// pathological accrual (a 1s inactivity timeout pauses between keystrokes;
// a 3h one counts lunch as work), so they are rejected, not clamped.
const (
	minIdleTimeout    = 30 * time.Second
	maxIdleTimeout    = 2 * time.Hour
	minFlushInterval  = time.Second
	maxFlushInterval  = 5 * time.Minute
	minFlushThreshold = 5 * time.Second
	maxFlushThreshold = 30 * time.Minute
)

// maxFlushFailures is the number of consecutive failed flush attempts after
// which pending time is discarded. Tracking must keep running on a dead
// store; it just stops promising durability.
const maxFlushFailures = 8

// Config holds the tracker's timing knobs.
type Config struct {
	// InactivityTimeout pauses the session when no activity signal arrives
	// for this long while the editor is focused.
	InactivityTimeout time.Duration

	// FocusTimeout pauses the session when editor focus stays lost for this
	// long. Within the window the session stays active so brief alt-tabs
	// don't fragment it.
	FocusTimeout time.Duration

	// FlushInterval is the scheduler tick period. Accrual happens on ticks,
	// so this bounds the tracker's timing resolution.
	FlushInterval time.Duration

	// FlushThreshold is the accumulated time at which a tick commits a
	// delta entry to the store.
	FlushThreshold time.Duration
}

// DefaultConfig returns the stock timing configuration.
func DefaultConfig() Config {
	return Config{
		InactivityTimeout: 150 * time.Second,
		FocusTimeout:      3 * time.Minute,
		FlushInterval:     5 * time.Second,
		FlushThreshold:    time.Minute,
	}
}

func (c Config) validate() error {
	check := func(name string, d, lo, hi time.Duration) error {
		if d < lo || d > hi {
			return fmt.Errorf("%s %s outside [%s, %s]", name, d, lo, hi)
		}
		return nil
	}
	if err := check("inactivity timeout", c.InactivityTimeout, minIdleTimeout, maxIdleTimeout); err != nil {
		return err
	}
	if err := check("focus timeout", c.FocusTimeout, minIdleTimeout, maxIdleTimeout); err != nil {
		return err
	}
	if err := check("flush interval", c.FlushInterval, minFlushInterval, maxFlushInterval); err != nil {
		return err
	}
	if err := check("flush threshold", c.FlushThreshold, minFlushThreshold, maxFlushThreshold); err != nil {
		return err
	}
	return nil
}

// Options wires a Tracker to its collaborators.
type Options struct {
	Config Config

	// Clock defaults to the system clock when nil.
	Clock clock.Clock

	// Store receives flushed time entries. Required.
	Store store.EntryStore

	// Signals delivers activity observations, normally monitor.Signals().
	Signals <-chan monitor.Signal

	// Branches delivers branch names observed by the poller. May be nil,
	// in which case the branch never changes from the initial context.
	Branches <-chan string

	// Context is the initial attribution context.
	Context collector.Context

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Snapshot is the point-in-time view of the session that query goroutines
// read while the run loop owns the live state.
type Snapshot struct {
	State          State
	Context        collector.Context
	SegmentID      string
	Date           string
	StartedAt      time.Time
	LastActivityAt time.Time

	// PendingSeconds is accrued time not yet persisted: the live
	// accumulator plus any deltas awaiting a store retry.
	PendingSeconds float64
}

// Tracker owns the session state machine. Run is its single mutation site;
// every exported query reads a snapshot or the store, both safe to use from
// other goroutines.
type Tracker struct {
	cfg      Config
	clk      clock.Clock
	store    store.EntryStore
	signals  <-chan monitor.Signal
	branches <-chan string
	logger   *slog.Logger

	session Session

	// pending holds delta entries staged for flush. Retried head-first so
	// a store outage preserves time instead of losing it; each delta keeps
	// the context it was accrued under, which is what stops time bleeding
	// across a segmentation boundary when a retry is in progress.
	pending       []entry.TimeEntry
	flushFailures int

	mu   sync.Mutex
	snap Snapshot
}

// New validates cfg and returns a Tracker with a fresh Active session.
func New(opts Options) (*Tracker, error) {
	if err := opts.Config.validate(); err != nil {
		return nil, fmt.Errorf("tracker config: %w", err)
	}
	if opts.Store == nil {
		return nil, errors.New("tracker: entry store is required")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := clk.Now()
	t := &Tracker{
		cfg:      opts.Config,
		clk:      clk,
		store:    opts.Store,
		signals:  opts.Signals,
		branches: opts.Branches,
		logger:   logger,
		session: Session{
			ID:             uuid.New().String(),
			State:          StateActive,
			Context:        opts.Context.Normalized(),
			Date:           entry.DateOf(now),
			StartedAt:      now,
			LastActivityAt: now,
			LastFlushAt:    now,
		},
	}
	t.publishSnapshot()
	return t, nil
}

// Run processes signals, branch updates and scheduler ticks until ctx is
// cancelled, then performs the terminal flush. All session mutation happens
// on this goroutine.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()

	t.logger.Info("tracker started",
		"project", t.session.Context.Project,
		"branch", t.session.Context.Branch,
		"inactivity_timeout", t.cfg.InactivityTimeout,
		"focus_timeout", t.cfg.FocusTimeout,
	)

	for {
		select {
		case <-ctx.Done():
			t.shutdown()
			return nil
		case sig := <-t.signals:
			t.handleSignal(sig)
		case branch := <-t.branches:
			t.handleBranch(branch)
		case <-ticker.C:
			t.tick()
		}
	}
}

// handleSignal applies one activity observation to the session.
func (t *Tracker) handleSignal(sig monitor.Signal) {
	switch sig.Kind {
	case monitor.KindFocusLost:
		// Keep the first loss timestamp; the grace window is measured from
		// when focus originally left, not from repeated blur events.
		if t.session.LastFocusLostAt == nil {
			at := sig.At
			t.session.LastFocusLostAt = &at
		}

	case monitor.KindFocusGained:
		// Focus alone is not activity: it clears the focus bookkeeping but
		// resumption waits for the next edit or cursor signal.
		t.session.LastFocusLostAt = nil

	case monitor.KindEdit, monitor.KindCursor:
		// A file in a different language starts a new segment before the
		// signal engages it, so the accumulator flushes under the language
		// it was accrued in.
		if sig.Path != "" {
			if lang := collector.DetectLanguage(sig.Path); lang != t.session.Context.Language {
				next := t.session.Context
				next.Language = lang
				t.segment(next, t.session.Date, "language change")
			}
		}
		t.engage(sig.At)
	}
	t.publishSnapshot()
}

// engage stamps activity and resumes a paused session.
func (t *Tracker) engage(now time.Time) {
	t.session.LastActivityAt = now
	t.session.LastFocusLostAt = nil
	if t.session.State == StatePaused {
		t.session.State = StateActive
		// Restart accrual from the resume instant so the paused stretch
		// since the last tick never counts.
		t.session.LastFlushAt = now
		t.logger.Info("session resumed", "project", t.session.Context.Project)
	}
}

// handleBranch reacts to a branch observation from the poller.
func (t *Tracker) handleBranch(branch string) {
	if branch == t.session.Context.Branch {
		return
	}
	next := t.session.Context
	next.Branch = branch
	t.segment(next, t.session.Date, "branch change")
	t.publishSnapshot()
}

// tick is the scheduler beat: accrue elapsed time, evaluate timeouts and the
// day boundary, and flush when due.
func (t *Tracker) tick() {
	now := t.clk.Now()
	skew := t.accrue(now)

	// A new calendar day starts a fresh segment regardless of state, so
	// seconds accrued before midnight land on the old date.
	if date := entry.DateOf(now); date != t.session.Date {
		t.segment(t.session.Context, date, "day rollover")
	}

	if t.session.State == StateActive {
		if t.session.LastFocusLostAt != nil {
			if now.Sub(*t.session.LastFocusLostAt) > t.cfg.FocusTimeout {
				t.pause("focus lost")
			}
		} else if now.Sub(t.session.LastActivityAt) > t.cfg.InactivityTimeout {
			t.pause("inactive")
		}
	}

	if !skew {
		if t.session.AccumulatedSeconds >= t.cfg.FlushThreshold.Seconds() {
			t.stageDelta()
		}
		t.writePending()
	}

	t.publishSnapshot()
}

// accrue advances the accrual checkpoint to now, adding the elapsed interval
// to the accumulator while the session is Active. Reports whether the clock
// moved backward, in which case the interval is dropped (clamped to zero)
// and the caller skips this tick's flush.
func (t *Tracker) accrue(now time.Time) (skew bool) {
	dt := now.Sub(t.session.LastFlushAt)
	t.session.LastFlushAt = now
	if dt < 0 {
		t.logger.Warn("clock moved backward, skipping flush", "interval", dt)
		return true
	}
	if t.session.State == StateActive {
		t.session.AccumulatedSeconds += dt.Seconds()
	}
	return false
}

// pause freezes accrual. Re-entering Paused is a no-op.
func (t *Tracker) pause(reason string) {
	if t.session.State == StatePaused {
		return
	}
	t.session.State = StatePaused
	t.logger.Info("session paused",
		"reason", reason,
		"unflushed_seconds", t.session.AccumulatedSeconds,
	)
}

// segment closes the current accrual bucket: the accumulator is staged as a
// delta under the old context and date, the context and date are swapped,
// and a fresh segment ID is minted. The Active/Paused state carries over.
// An immediate flush attempt follows, per the segmentation contract.
func (t *Tracker) segment(next collector.Context, date string, reason string) {
	t.stageDelta()
	t.session.Context = next.Normalized()
	t.session.Date = date
	t.session.ID = uuid.New().String()
	t.writePending()
	t.logger.Info("new segment",
		"reason", reason,
		"project", t.session.Context.Project,
		"branch", t.session.Context.Branch,
		"language", t.session.Context.Language,
		"date", date,
	)
}

// stageDelta moves the accumulator into the pending queue as a delta entry
// keyed by the session's current context and date, coalescing with an
// already-pending delta for the same key.
func (t *Tracker) stageDelta() {
	if t.session.AccumulatedSeconds <= 0 {
		return
	}
	delta := entry.TimeEntry{
		Date:     t.session.Date,
		Project:  t.session.Context.Project,
		Branch:   t.session.Context.Branch,
		Language: t.session.Context.Language,
		Minutes:  t.session.AccumulatedSeconds / 60,
	}.Normalized()
	t.session.AccumulatedSeconds = 0

	for i := range t.pending {
		if t.pending[i].Key() == delta.Key() {
			t.pending[i].Minutes += delta.Minutes
			return
		}
	}
	t.pending = append(t.pending, delta)
}

// writePending commits staged deltas head-first. A transient store error
// keeps the remainder queued for the next tick; maxFlushFailures consecutive
// failed attempts drop the queue. Out-of-range deltas are discarded
// immediately since retrying cannot make them valid.
func (t *Tracker) writePending() {
	for len(t.pending) > 0 {
		delta := t.pending[0]
		err := t.store.MergeEntry(delta)
		if err == nil {
			t.pending = t.pending[1:]
			t.flushFailures = 0
			t.logger.Debug("flushed",
				"minutes", delta.Minutes,
				"project", delta.Project,
				"branch", delta.Branch,
				"language", delta.Language,
				"date", delta.Date,
			)
			continue
		}
		if errors.Is(err, entry.ErrOutOfRange) {
			t.pending = t.pending[1:]
			t.logger.Error("discarding invalid delta",
				"error", err,
				"minutes", delta.Minutes,
				"date", delta.Date,
			)
			continue
		}
		t.flushFailures++
		if t.flushFailures >= maxFlushFailures {
			t.logger.Error("store unavailable, discarding pending time",
				"error", err,
				"attempts", t.flushFailures,
				"dropped_minutes", pendingMinutes(t.pending),
			)
			t.pending = nil
			t.flushFailures = 0
			return
		}
		t.logger.Warn("flush failed, keeping time for retry",
			"error", err,
			"attempts", t.flushFailures,
		)
		return
	}
	t.pending = nil
}

// shutdown is the terminal flush: accrued time is staged and written in one
// best-effort attempt regardless of state or threshold.
func (t *Tracker) shutdown() {
	t.accrue(t.clk.Now())
	t.stageDelta()
	if len(t.pending) > 0 {
		// One attempt only; there is no next tick to retry on.
		t.flushFailures = maxFlushFailures - 1
		t.writePending()
	}
	t.publishSnapshot()
	t.logger.Info("tracker stopped", "state", t.session.State.String())
}

func pendingMinutes(pending []entry.TimeEntry) float64 {
	var total float64
	for _, d := range pending {
		total += d.Minutes
	}
	return total
}

// publishSnapshot copies the loop-owned state into the query snapshot.
func (t *Tracker) publishSnapshot() {
	pendingSec := t.session.AccumulatedSeconds
	for _, d := range t.pending {
		pendingSec += d.Minutes * 60
	}
	t.mu.Lock()
	t.snap = Snapshot{
		State:          t.session.State,
		Context:        t.session.Context,
		SegmentID:      t.session.ID,
		Date:           t.session.Date,
		StartedAt:      t.session.StartedAt,
		LastActivityAt: t.session.LastActivityAt,
		PendingSeconds: pendingSec,
	}
	t.mu.Unlock()
}

// Snapshot returns the latest published session view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// IsActive reports whether time is currently accruing.
func (t *Tracker) IsActive() bool {
	return t.Snapshot().State == StateActive
}

// CurrentProject returns the project time is being attributed to.
func (t *Tracker) CurrentProject() string {
	return t.Snapshot().Context.Project
}

// CurrentBranch returns the branch time is being attributed to.
func (t *Tracker) CurrentBranch() string {
	return t.Snapshot().Context.Branch
}

// Rollup recomputes the period totals from the persisted entries. Pending
// seconds below the flush threshold are not included; Snapshot exposes them.
func (t *Tracker) Rollup() (stats.Rollup, error) {
	now := t.clk.Now()
	entries, err := t.store.ListEntries("", entry.DateOf(now))
	if err != nil {
		return stats.Rollup{}, fmt.Errorf("listing entries: %w", err)
	}
	return stats.Rollups(entries, now), nil
}

// TodayTotal returns today's persisted minutes.
func (t *Tracker) TodayTotal() (float64, error) {
	r, err := t.Rollup()
	return r.Today, err
}

// WeeklyTotal returns this week's persisted minutes (Sunday start).
func (t *Tracker) WeeklyTotal() (float64, error) {
	r, err := t.Rollup()
	return r.Week, err
}

// MonthlyTotal returns this month's persisted minutes.
func (t *Tracker) MonthlyTotal() (float64, error) {
	r, err := t.Rollup()
	return r.Month, err
}

// YearlyTotal returns this year's persisted minutes.
func (t *Tracker) YearlyTotal() (float64, error) {
	r, err := t.Rollup()
	return r.Year, err
}

// AllTimeTotal returns all persisted minutes.
func (t *Tracker) AllTimeTotal() (float64, error) {
	r, err := t.Rollup()
	return r.AllTime, err
}

// CurrentProjectTime returns today's persisted minutes for the project
// currently being tracked.
func (t *Tracker) CurrentProjectTime() (float64, error) {
	today := entry.DateOf(t.clk.Now())
	entries, err := t.store.ListEntries(today, today)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}
	matched := stats.FilterEntries(entries, stats.Filter{Project: t.CurrentProject()})
	return stats.SumMinutes(matched), nil
}

// SearchEntries returns persisted entries in [from, to] matching f. Empty
// date bounds are open ends.
func (t *Tracker) SearchEntries(from, to string, f stats.Filter) ([]entry.TimeEntry, error) {
	entries, err := t.store.ListEntries(from, to)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return stats.FilterEntries(entries, f), nil
}

// SummaryData recomputes the daily/project/language breakdown over the full
// entry set.
func (t *Tracker) SummaryData() (stats.SummaryData, error) {
	entries, err := t.store.ListEntries("", "")
	if err != nil {
		return stats.SummaryData{}, fmt.Errorf("listing entries: %w", err)
	}
	return stats.Summary(entries), nil
}

// Overview bundles the aggregate views built from one pass over the store.
type Overview struct {
	Rollup  stats.Rollup
	Streak  stats.Streak
	Summary stats.SummaryData
}

// Overview computes the rollup, streaks and summary in a single store read.
func (t *Tracker) Overview() (Overview, error) {
	now := t.clk.Now()
	entries, err := t.store.ListEntries("", "")
	if err != nil {
		return Overview{}, fmt.Errorf("listing entries: %w", err)
	}
	return Overview{
		Rollup:  stats.Rollups(entries, now),
		Streak:  stats.Streaks(entries, now),
		Summary: stats.Summary(entries),
	}, nil
}
