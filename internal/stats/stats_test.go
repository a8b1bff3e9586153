package stats

import (
	"fmt"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/codeclock/internal/entry"
)

func mkEntry(date, project, language string, minutes float64) entry.TimeEntry {
	return entry.TimeEntry{
		Date:     date,
		Project:  project,
		Branch:   "main",
		Language: language,
		Minutes:  minutes,
	}
}

// TestStreakSpecExample checks the canonical streak case: entries on
// 2024-01-01, 01-02, 01-03 and 01-05 give a longest streak of 3, and with
// "today" = 01-05 a current streak of 1.
func TestStreakSpecExample(t *testing.T) {
	entries := []entry.TimeEntry{
		mkEntry("2024-01-01", "p", "Go", 30),
		mkEntry("2024-01-02", "p", "Go", 30),
		mkEntry("2024-01-03", "p", "Go", 30),
		mkEntry("2024-01-05", "p", "Go", 30),
	}
	today := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	s := Streaks(entries, today)
	if s.Longest != 3 {
		t.Errorf("Longest: want 3, got %d", s.Longest)
	}
	if s.Current != 1 {
		t.Errorf("Current: want 1, got %d", s.Current)
	}
}

func TestStreakCurrentZeroWhenStale(t *testing.T) {
	entries := []entry.TimeEntry{
		mkEntry("2024-01-01", "p", "Go", 30),
		mkEntry("2024-01-02", "p", "Go", 30),
	}
	// Last tracked date is three days before "today".
	today := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	s := Streaks(entries, today)
	if s.Longest != 2 {
		t.Errorf("Longest: want 2, got %d", s.Longest)
	}
	if s.Current != 0 {
		t.Errorf("Current: want 0 for stale streak, got %d", s.Current)
	}
}

func TestStreakCurrentAliveYesterday(t *testing.T) {
	entries := []entry.TimeEntry{
		mkEntry("2024-01-02", "p", "Go", 30),
		mkEntry("2024-01-03", "p", "Go", 30),
		mkEntry("2024-01-04", "p", "Go", 30),
	}
	// Yesterday was the last tracked day, so the streak is still alive.
	today := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	s := Streaks(entries, today)
	if s.Current != 3 {
		t.Errorf("Current: want 3, got %d", s.Current)
	}
}

func TestStreakIgnoresZeroMinuteEntries(t *testing.T) {
	entries := []entry.TimeEntry{
		mkEntry("2024-01-01", "p", "Go", 30),
		mkEntry("2024-01-02", "p", "Go", 0), // zero time must not extend a streak
		mkEntry("2024-01-03", "p", "Go", 30),
	}
	today := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	s := Streaks(entries, today)
	if s.Longest != 1 {
		t.Errorf("Longest: want 1, got %d", s.Longest)
	}
	if s.Current != 1 {
		t.Errorf("Current: want 1, got %d", s.Current)
	}
}

func TestStreaksEmpty(t *testing.T) {
	s := Streaks(nil, time.Now())
	if s.Longest != 0 || s.Current != 0 {
		t.Errorf("want zero streaks for no entries, got %+v", s)
	}
}

// TestRollupsPeriodBuckets pins the period boundaries: now is a Wednesday,
// so the Sunday-start week began three days earlier.
func TestRollupsPeriodBuckets(t *testing.T) {
	// 2024-03-13 is a Wednesday; its week starts Sunday 2024-03-10.
	now := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

	entries := []entry.TimeEntry{
		mkEntry("2024-03-13", "p", "Go", 10),  // today
		mkEntry("2024-03-10", "p", "Go", 20),  // this week (Sunday)
		mkEntry("2024-03-09", "p", "Go", 40),  // last week, this month
		mkEntry("2024-02-15", "p", "Go", 80),  // this year
		mkEntry("2023-12-31", "p", "Go", 160), // previous year
		mkEntry("2024-03-14", "p", "Go", 999), // future-dated, excluded everywhere
	}

	r := Rollups(entries, now)
	if r.Today != 10 {
		t.Errorf("Today: want 10, got %v", r.Today)
	}
	if r.Week != 30 {
		t.Errorf("Week: want 30, got %v", r.Week)
	}
	if r.Month != 70 {
		t.Errorf("Month: want 70, got %v", r.Month)
	}
	if r.Year != 150 {
		t.Errorf("Year: want 150, got %v", r.Year)
	}
	if r.AllTime != 310 {
		t.Errorf("AllTime: want 310, got %v", r.AllTime)
	}
}

func TestWeekStartIsSunday(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-10", "2024-03-10"}, // Sunday maps to itself
		{"2024-03-13", "2024-03-10"}, // Wednesday
		{"2024-03-16", "2024-03-10"}, // Saturday
	}
	for _, c := range cases {
		in, err := time.Parse(entry.DateLayout, c.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := entry.DateOf(weekStart(in)); got != c.want {
			t.Errorf("weekStart(%s): want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestIntensityLevels(t *testing.T) {
	cases := []struct {
		minutes float64
		want    int
	}{
		{0, 0},
		{-5, 0},
		{0.5, 1},
		{59.9, 1},
		{60, 2},
		{179.9, 2},
		{180, 3},
		{359.9, 3},
		{360, 4},
		{1440, 4},
	}
	for _, c := range cases {
		if got := Intensity(c.minutes); got != c.want {
			t.Errorf("Intensity(%v): want %d, got %d", c.minutes, c.want, got)
		}
	}
}

func TestWeekdayAveragesAndBestWeekday(t *testing.T) {
	entries := []entry.TimeEntry{
		// Two Mondays averaging 45 minutes.
		mkEntry("2024-03-04", "p", "Go", 30),
		mkEntry("2024-03-11", "p", "Go", 60),
		// One Friday with 50 minutes.
		mkEntry("2024-03-08", "p", "Go", 50),
	}

	avg := WeekdayAverages(entries)
	if avg[int(time.Monday)] != 45 {
		t.Errorf("Monday average: want 45, got %v", avg[int(time.Monday)])
	}
	if avg[int(time.Friday)] != 50 {
		t.Errorf("Friday average: want 50, got %v", avg[int(time.Friday)])
	}
	if avg[int(time.Sunday)] != 0 {
		t.Errorf("Sunday average: want 0, got %v", avg[int(time.Sunday)])
	}

	if best := BestWeekday(avg); best != time.Friday {
		t.Errorf("BestWeekday: want Friday, got %s", best)
	}
}

func TestBestWeekdayTieGoesToLowestIndex(t *testing.T) {
	var avg [7]float64
	avg[int(time.Tuesday)] = 90
	avg[int(time.Saturday)] = 90

	if best := BestWeekday(avg); best != time.Tuesday {
		t.Errorf("tie should go to the lower weekday index, want Tuesday, got %s", best)
	}
}

// Feature: codeclock, Property 1: Summary conservation
// The summary's total and each of its breakdowns account for exactly the
// minutes present in the entry set, no matter how entries are distributed.
func TestSummaryConservation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		entries := make([]entry.TimeEntry, n)
		var want float64
		for i := range entries {
			day := rapid.IntRange(1, 28).Draw(rt, fmt.Sprintf("day%d", i))
			minutes := rapid.Float64Range(0, 300).Draw(rt, fmt.Sprintf("min%d", i))
			entries[i] = entry.TimeEntry{
				Date:     fmt.Sprintf("2024-01-%02d", day),
				Project:  rapid.SampledFrom([]string{"api", "web", "infra"}).Draw(rt, fmt.Sprintf("proj%d", i)),
				Branch:   "main",
				Language: rapid.SampledFrom([]string{"Go", "SQL", "YAML"}).Draw(rt, fmt.Sprintf("lang%d", i)),
				Minutes:  minutes,
			}
			want += minutes
		}

		s := Summary(entries)

		if !closeTo(s.TotalMinutes, want) {
			rt.Fatalf("TotalMinutes: want %v, got %v", want, s.TotalMinutes)
		}
		if got := sumMap(s.Daily); !closeTo(got, want) {
			rt.Fatalf("Daily sum: want %v, got %v", want, got)
		}
		if got := sumMap(s.Project); !closeTo(got, want) {
			rt.Fatalf("Project sum: want %v, got %v", want, got)
		}
		if got := sumMap(s.Language); !closeTo(got, want) {
			rt.Fatalf("Language sum: want %v, got %v", want, got)
		}
	})
}

func sumMap(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFilterEntries(t *testing.T) {
	entries := []entry.TimeEntry{
		{Date: "2024-01-01", Project: "api", Branch: "main", Language: "Go", Minutes: 10},
		{Date: "2024-01-01", Project: "api", Branch: "feat/x", Language: "Go", Minutes: 20},
		{Date: "2024-01-02", Project: "web", Branch: "main", Language: "TypeScript", Minutes: 30},
	}

	got := FilterEntries(entries, Filter{Project: "api"})
	if len(got) != 2 {
		t.Fatalf("project filter: want 2 entries, got %d", len(got))
	}

	got = FilterEntries(entries, Filter{Project: "api", Branch: "main"})
	if len(got) != 1 || got[0].Minutes != 10 {
		t.Fatalf("project+branch filter: want the 10-minute entry, got %+v", got)
	}

	got = FilterEntries(entries, Filter{})
	if len(got) != 3 {
		t.Fatalf("empty filter: want all 3 entries, got %d", len(got))
	}

	got = FilterEntries(entries, Filter{Language: "Rust"})
	if len(got) != 0 {
		t.Fatalf("no-match filter: want 0 entries, got %d", len(got))
	}
}

func TestRankedOrderAndTieBreak(t *testing.T) {
	ranked := Ranked(map[string]float64{
		"web":   120,
		"api":   120,
		"infra": 40,
	})

	want := []string{"api", "web", "infra"}
	if len(ranked) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(ranked))
	}
	for i, name := range want {
		if ranked[i].Name != name {
			t.Errorf("rank %d: want %q, got %q", i, name, ranked[i].Name)
		}
	}
}
