// Package tui provides the live Bubble Tea dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fakeyudi/codeclock/internal/ipc"
	"github.com/fakeyudi/codeclock/internal/report"
	"github.com/fakeyudi/codeclock/internal/stats"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Active tab: bright, underlined
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// Inactive tab: muted
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	// Separator between tabs
	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	// Section heading inside a tab
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	activeStateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	pausedStateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	// Activity strip ramp, idle to busiest
	intensityStyles = [5]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	}

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabOverview tabID = iota
	tabProjects
	tabLanguages
	tabActivity
	tabCount
)

var tabNames = [tabCount]string{
	"Overview", "Projects", "Languages", "Activity",
}

// ── Data ────────────────────

// Data is one refresh of everything the dashboard renders. Status is
// meaningful only when Live is true; Report always covers full history.
type Data struct {
	Live   bool
	Status ipc.StatusReply
	Report *report.Report
}

// Loader fetches a fresh Data snapshot. The dashboard calls it once at
// startup and again on every refresh tick.
type Loader func() (Data, error)

// refreshInterval is how often the dashboard re-runs its Loader.
const refreshInterval = 5 * time.Second

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	load      Loader
	data      Data
	loadErr   string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
}

// New creates a dashboard model seeded with an initial snapshot.
func New(load Loader, initial Data) Model {
	return Model{load: load, data: initial}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "r":
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  codeclock  dashboard")

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  r refresh  q quit"
	src := "store"
	if m.data.Live {
		src = "live"
	}
	if m.loadErr != "" {
		src = "stale"
	}
	right := fmt.Sprintf("%s %s  %3.0f%%",
		src,
		m.data.Report.GeneratedAt.Format("15:04:05"),
		m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(right) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + right,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) refresh() {
	d, err := m.load()
	if err != nil {
		// Keep showing the last good snapshot.
		m.loadErr = err.Error()
		return
	}
	m.data = d
	m.loadErr = ""
	for i := tabID(0); i < tabCount; i++ {
		m.viewports[i].SetContent(m.renderTab(i))
	}
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabOverview:
		return m.renderOverview()
	case tabProjects:
		return m.renderProjects()
	case tabLanguages:
		return m.renderLanguages()
	case tabActivity:
		return m.renderActivity()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
}

func (m *Model) renderOverview() string {
	var sb strings.Builder

	sb.WriteString(heading("Session"))
	if m.data.Live {
		st := m.data.Status
		state := pausedStateStyle.Render(st.State)
		if st.State == "active" {
			state = activeStateStyle.Render(st.State)
		}
		row(&sb, "State:", state)
		row(&sb, "Project:", st.Project)
		row(&sb, "Branch:", st.Branch)
		row(&sb, "Language:", st.Language)
		row(&sb, "Started:", st.StartedAt.Format("2006-01-02 15:04:05"))
		row(&sb, "Last activity:", st.LastActivityAt.Format("15:04:05"))
		unflushed := time.Duration(st.PendingSeconds * float64(time.Second)).Round(time.Second)
		row(&sb, "Unflushed:", unflushed.String())
	} else {
		sb.WriteString(dimStyle.Render("  (no tracker running; showing stored history)") + "\n")
	}

	rep := m.data.Report
	sb.WriteString(heading("Totals"))
	row(&sb, "Today:", timeStyle.Render(report.FormatDuration(rep.Rollup.Today)))
	row(&sb, "This week:", timeStyle.Render(report.FormatDuration(rep.Rollup.Week)))
	row(&sb, "This month:", timeStyle.Render(report.FormatDuration(rep.Rollup.Month)))
	row(&sb, "This year:", timeStyle.Render(report.FormatDuration(rep.Rollup.Year)))
	row(&sb, "All time:", timeStyle.Render(report.FormatDuration(rep.Rollup.AllTime)))

	sb.WriteString(heading("Streak"))
	row(&sb, "Current:", days(rep.Streak.Current))
	row(&sb, "Longest:", days(rep.Streak.Longest))
	return sb.String()
}

func (m *Model) renderProjects() string {
	rep := m.data.Report
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Projects (%d)", len(rep.Projects))))
	barSection(&sb, rep.Projects)
	sb.WriteString(heading(fmt.Sprintf("Branches (%d)", len(rep.Branches))))
	barSection(&sb, rep.Branches)
	return sb.String()
}

func (m *Model) renderLanguages() string {
	rep := m.data.Report
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Languages (%d)", len(rep.Languages))))
	barSection(&sb, rep.Languages)
	return sb.String()
}

func (m *Model) renderActivity() string {
	rep := m.data.Report
	var sb strings.Builder

	sb.WriteString(heading("Last 4 Weeks"))
	var strip strings.Builder
	strip.WriteString("  ")
	for i, c := range rep.Activity {
		if i > 0 && i%7 == 0 {
			strip.WriteString(" ")
		}
		glyph := "█"
		if c.Intensity == 0 {
			glyph = "·"
		}
		strip.WriteString(intensityStyles[c.Intensity].Render(glyph))
	}
	sb.WriteString(strip.String() + "\n")
	if n := len(rep.Activity); n > 0 {
		first, last := rep.Activity[0].Date, rep.Activity[n-1].Date
		width := n + (n-1)/7 // glyphs plus week gaps
		pad := width - len(first) - len(last)
		if pad < 1 {
			pad = 1
		}
		sb.WriteString(dimStyle.Render("  "+first+strings.Repeat(" ", pad)+last) + "\n")
	}

	sb.WriteString(heading("Weekday Averages"))
	var maxAvg float64
	for _, v := range rep.WeekdayAvg {
		if v > maxAvg {
			maxAvg = v
		}
	}
	for i, v := range rep.WeekdayAvg {
		name := time.Weekday(i).String()
		if name == rep.BestWeekday {
			name = name + " *"
		}
		sb.WriteString(barRow(name, v, maxAvg))
	}
	sb.WriteString(dimStyle.Render("  * best day") + "\n")

	sb.WriteString(heading("Recent Days"))
	daily := rep.Daily
	if len(daily) > 14 {
		daily = daily[len(daily)-14:]
	}
	if len(daily) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	var maxDay float64
	for _, d := range daily {
		if d.Minutes > maxDay {
			maxDay = d.Minutes
		}
	}
	// Newest first.
	for i := len(daily) - 1; i >= 0; i-- {
		sb.WriteString(barRow(daily[i].Date, daily[i].Minutes, maxDay))
	}
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const barWidth = 24

// barRow renders one "name  ████░░  1h 30m" line scaled against max.
func barRow(name string, minutes, max float64) string {
	filled := 0
	if max > 0 {
		filled = int(minutes/max*barWidth + 0.5)
	}
	if filled > barWidth {
		filled = barWidth
	}
	if minutes > 0 && filled == 0 {
		filled = 1
	}
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %-20s %s %s\n",
		truncate(name, 20), bar, timeStyle.Render(report.FormatDuration(minutes)))
}

func barSection(sb *strings.Builder, totals []stats.RankedTotal) {
	if len(totals) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return
	}
	max := totals[0].Minutes
	for _, t := range totals {
		sb.WriteString(barRow(t.Name, t.Minutes, max))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Run starts the dashboard, loading the first snapshot before the program
// takes over the terminal.
func Run(load Loader) error {
	initial, err := load()
	if err != nil {
		return err
	}
	p := tea.NewProgram(New(load, initial), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
