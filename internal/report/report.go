// Package report builds and renders summaries of persisted coding time.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/stats"
)

// Period selects the window a report covers. Windows are calendar-aligned:
// a week starts on Sunday, a month on the 1st, a year on Jan 1.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod maps a user-supplied period name to a Period.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "today":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	case "all", "all-time", "alltime":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("unknown period %q (want day, week, month, year or all)", s)
}

// activityDays is the length of the activity strip: four full weeks.
const activityDays = 28

// DayTotal is one day of the period's daily series.
type DayTotal struct {
	Date    string  `json:"date"`
	Minutes float64 `json:"minutes"`
}

// DayCell is one day of the activity strip.
type DayCell struct {
	Date      string  `json:"date"`
	Minutes   float64 `json:"minutes"`
	Intensity int     `json:"intensity"`
}

// Report is a rendered-agnostic summary of tracked time. Rollup, Streak and
// the weekday averages always cover the full history; the ranked totals and
// daily series are scoped to the period.
type Report struct {
	Period       Period              `json:"period"`
	From         string              `json:"from,omitempty"`
	To           string              `json:"to"`
	GeneratedAt  time.Time           `json:"generated_at"`
	TotalMinutes float64             `json:"total_minutes"`
	Rollup       stats.Rollup        `json:"rollup"`
	Streak       stats.Streak        `json:"streak"`
	Projects     []stats.RankedTotal `json:"projects"`
	Languages    []stats.RankedTotal `json:"languages"`
	Branches     []stats.RankedTotal `json:"branches"`
	Daily        []DayTotal          `json:"daily"`
	WeekdayAvg   [7]float64          `json:"weekday_averages"`
	BestWeekday  string              `json:"best_weekday"`
	Activity     []DayCell           `json:"activity"`
}

// Build computes a Report over entries as of now.
func Build(entries []entry.TimeEntry, now time.Time, period Period) *Report {
	today := entry.DateOf(now)
	from := periodStart(now, period)

	r := &Report{
		Period:      period,
		From:        from,
		To:          today,
		GeneratedAt: now,
		Rollup:      stats.Rollups(entries, now),
		Streak:      stats.Streaks(entries, now),
		WeekdayAvg:  stats.WeekdayAverages(entries),
	}
	r.BestWeekday = stats.BestWeekday(r.WeekdayAvg).String()

	projects := make(map[string]float64)
	languages := make(map[string]float64)
	branches := make(map[string]float64)
	daily := make(map[string]float64)
	for _, e := range entries {
		if e.Date > today {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		r.TotalMinutes += e.Minutes
		projects[e.Project] += e.Minutes
		languages[e.Language] += e.Minutes
		branches[e.Branch] += e.Minutes
		daily[e.Date] += e.Minutes
	}
	r.Projects = stats.Ranked(projects)
	r.Languages = stats.Ranked(languages)
	r.Branches = stats.Ranked(branches)

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		r.Daily = append(r.Daily, DayTotal{Date: d, Minutes: daily[d]})
	}

	perDay := make(map[string]float64)
	for _, e := range entries {
		perDay[e.Date] += e.Minutes
	}
	for i := activityDays - 1; i >= 0; i-- {
		date := entry.DateOf(now.AddDate(0, 0, -i))
		minutes := perDay[date]
		r.Activity = append(r.Activity, DayCell{
			Date:      date,
			Minutes:   minutes,
			Intensity: stats.Intensity(minutes),
		})
	}
	return r
}

// periodStart returns the inclusive lower date bound for period, or "" for
// the all-time window.
func periodStart(now time.Time, period Period) string {
	switch period {
	case PeriodDay:
		return entry.DateOf(now)
	case PeriodWeek:
		return entry.DateOf(now.AddDate(0, 0, -int(now.Weekday())))
	case PeriodMonth:
		return entry.DateOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	case PeriodYear:
		return entry.DateOf(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()))
	}
	return ""
}

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// intensityGlyphs maps stats.Intensity levels to strip glyphs.
var intensityGlyphs = []rune{'·', '░', '▒', '▓', '█'}

// TextRenderer renders a Report as aligned plain text for the terminal.
type TextRenderer struct{}

func (TextRenderer) Render(r *Report) ([]byte, error) {
	var sb strings.Builder

	window := string(r.Period)
	if r.From != "" {
		window = fmt.Sprintf("%s (%s to %s)", r.Period, r.From, r.To)
	}
	fmt.Fprintf(&sb, "Coding report: %s\n\n", window)

	sb.WriteString("Totals\n")
	fmt.Fprintf(&sb, "  %-12s %s\n", "today", FormatDuration(r.Rollup.Today))
	fmt.Fprintf(&sb, "  %-12s %s\n", "this week", FormatDuration(r.Rollup.Week))
	fmt.Fprintf(&sb, "  %-12s %s\n", "this month", FormatDuration(r.Rollup.Month))
	fmt.Fprintf(&sb, "  %-12s %s\n", "this year", FormatDuration(r.Rollup.Year))
	fmt.Fprintf(&sb, "  %-12s %s\n", "all time", FormatDuration(r.Rollup.AllTime))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Streak\n  current %s (longest %s)\n\n",
		plural(r.Streak.Current, "day"), plural(r.Streak.Longest, "day"))

	writeRanked(&sb, "Projects", r.Projects)
	writeRanked(&sb, "Languages", r.Languages)
	writeRanked(&sb, "Branches", r.Branches)

	if len(r.Daily) > 0 {
		sb.WriteString("Daily\n")
		for _, d := range r.Daily {
			fmt.Fprintf(&sb, "  %s  %s\n", d.Date, FormatDuration(d.Minutes))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Best day: %s (avg %s)\n\n",
		r.BestWeekday, FormatDuration(bestAverage(r)))

	sb.WriteString("Activity (last 4 weeks)\n  ")
	for i, cell := range r.Activity {
		if i > 0 && i%7 == 0 {
			sb.WriteRune(' ')
		}
		sb.WriteRune(intensityGlyphs[cell.Intensity])
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func writeRanked(sb *strings.Builder, title string, totals []stats.RankedTotal) {
	if len(totals) == 0 {
		return
	}
	sb.WriteString(title + "\n")
	for _, t := range totals {
		fmt.Fprintf(sb, "  %-24s %s\n", t.Name, FormatDuration(t.Minutes))
	}
	sb.WriteString("\n")
}

func bestAverage(r *Report) float64 {
	for i, avg := range r.WeekdayAvg {
		if time.Weekday(i).String() == r.BestWeekday {
			return avg
		}
	}
	return 0
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDuration renders minutes as "2h 05m" style text.
func FormatDuration(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
