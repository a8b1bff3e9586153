// Package stats computes rollups, streaks and summaries from the persisted
// time-entry set. Everything here is a pure function recomputed per query;
// nothing is cached, so results can never go stale against the store.
package stats

import (
	"sort"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
)

// Rollup holds the period totals, in minutes, for entries dated up to and
// including today.
type Rollup struct {
	Today   float64 `json:"today"`
	Week    float64 `json:"week"`
	Month   float64 `json:"month"`
	Year    float64 `json:"year"`
	AllTime float64 `json:"all_time"`
}

// Rollups sums entry minutes into period buckets. Weeks start on Sunday.
// Entries dated after today are ignored in every bucket.
func Rollups(entries []entry.TimeEntry, now time.Time) Rollup {
	today := entry.DateOf(now)
	week := entry.DateOf(weekStart(now))
	month := entry.DateOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	year := entry.DateOf(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()))

	var r Rollup
	for _, e := range entries {
		if e.Date > today {
			continue
		}
		r.AllTime += e.Minutes
		if e.Date >= year {
			r.Year += e.Minutes
		}
		if e.Date >= month {
			r.Month += e.Minutes
		}
		if e.Date >= week {
			r.Week += e.Minutes
		}
		if e.Date == today {
			r.Today += e.Minutes
		}
	}
	return r
}

// weekStart returns Sunday 00:00 of the week containing t.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

// Streak describes runs of consecutive calendar dates with tracked time.
type Streak struct {
	Longest int `json:"longest"`
	Current int `json:"current"`
}

// Streaks computes the longest and the current run of consecutive dates
// holding nonzero minutes. The current streak is nonzero only when the most
// recent tracked date is today or yesterday.
func Streaks(entries []entry.TimeEntry, now time.Time) Streak {
	dates := trackedDates(entries)
	if len(dates) == 0 {
		return Streak{}
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if nextDay(dates[i-1]) == dates[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := entry.DateOf(now)
	yesterday := entry.DateOf(now.AddDate(0, 0, -1))
	current := 0
	if last := dates[len(dates)-1]; last == today || last == yesterday {
		current = run
	}
	return Streak{Longest: longest, Current: current}
}

// trackedDates returns the sorted distinct dates carrying nonzero minutes.
func trackedDates(entries []entry.TimeEntry) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, e := range entries {
		if e.Minutes <= 0 || seen[e.Date] {
			continue
		}
		seen[e.Date] = true
		dates = append(dates, e.Date)
	}
	sort.Strings(dates)
	return dates
}

// nextDay returns the date string one calendar day after date. Malformed
// dates return "" and therefore never chain.
func nextDay(date string) string {
	t, err := time.Parse(entry.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(entry.DateLayout)
}

// WeekdayAverages returns the average minutes per calendar weekday, indexed
// by time.Weekday (Sunday=0). The average is taken over the distinct tracked
// dates falling on that weekday; weekdays with no tracked dates stay zero.
func WeekdayAverages(entries []entry.TimeEntry) [7]float64 {
	var totals [7]float64
	var days [7]float64
	byDate := dailyTotals(entries)

	for date, minutes := range byDate {
		t, err := time.Parse(entry.DateLayout, date)
		if err != nil {
			continue
		}
		wd := int(t.Weekday())
		totals[wd] += minutes
		days[wd]++
	}

	var avg [7]float64
	for i := range avg {
		if days[i] > 0 {
			avg[i] = totals[i] / days[i]
		}
	}
	return avg
}

// BestWeekday returns the weekday with the highest average; ties go to the
// lowest weekday index (Sunday first).
func BestWeekday(avg [7]float64) time.Weekday {
	best := 0
	for i := 1; i < len(avg); i++ {
		if avg[i] > avg[best] {
			best = i
		}
	}
	return time.Weekday(best)
}

// Intensity maps a day's minutes onto a 0-4 heatmap level.
// 0 → 0; (0,60) → 1; [60,180) → 2; [180,360) → 3; [360,∞) → 4.
func Intensity(minutes float64) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes < 60:
		return 1
	case minutes < 180:
		return 2
	case minutes < 360:
		return 3
	default:
		return 4
	}
}

// SummaryData is the per-day/per-project/per-language breakdown handed to
// presentation layers. Recomputed per query, never persisted.
type SummaryData struct {
	Daily        map[string]float64 `json:"daily_summary"`
	Project      map[string]float64 `json:"project_summary"`
	Language     map[string]float64 `json:"language_summary"`
	TotalMinutes float64            `json:"total_time"`
}

// Summary folds the entry set into SummaryData.
func Summary(entries []entry.TimeEntry) SummaryData {
	s := SummaryData{
		Daily:    make(map[string]float64),
		Project:  make(map[string]float64),
		Language: make(map[string]float64),
	}
	for _, e := range entries {
		s.Daily[e.Date] += e.Minutes
		s.Project[e.Project] += e.Minutes
		s.Language[e.Language] += e.Minutes
		s.TotalMinutes += e.Minutes
	}
	return s
}

// dailyTotals sums minutes per date.
func dailyTotals(entries []entry.TimeEntry) map[string]float64 {
	byDate := make(map[string]float64)
	for _, e := range entries {
		byDate[e.Date] += e.Minutes
	}
	return byDate
}

// Filter restricts entries by context fields; empty fields match anything.
type Filter struct {
	Project  string
	Branch   string
	Language string
}

// FilterEntries returns the entries matching f, preserving order.
func FilterEntries(entries []entry.TimeEntry, f Filter) []entry.TimeEntry {
	var out []entry.TimeEntry
	for _, e := range entries {
		if f.Project != "" && e.Project != f.Project {
			continue
		}
		if f.Branch != "" && e.Branch != f.Branch {
			continue
		}
		if f.Language != "" && e.Language != f.Language {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SumMinutes totals the minutes across entries.
func SumMinutes(entries []entry.TimeEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Minutes
	}
	return total
}

// RankedTotal is one name → minutes row of a ranked breakdown.
type RankedTotal struct {
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
}

// Ranked sorts a summary map by minutes descending, names ascending on ties.
func Ranked(totals map[string]float64) []RankedTotal {
	out := make([]RankedTotal, 0, len(totals))
	for name, minutes := range totals {
		out = append(out, RankedTotal{Name: name, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Name < out[j].Name
	})
	return out
}
