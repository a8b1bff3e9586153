package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/clock"
	"github.com/fakeyudi/codeclock/internal/ipc"
	"github.com/fakeyudi/codeclock/internal/report"
	"github.com/fakeyudi/codeclock/internal/stats"
	"github.com/fakeyudi/codeclock/internal/store"
	"github.com/fakeyudi/codeclock/internal/tui"
)

var dashboardPlain bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse tracked time in an interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dashboardPlain {
			entries, err := loadEntries("", "", stats.Filter{})
			if err != nil {
				return err
			}
			out, err := report.TextRenderer{}.Render(
				report.Build(entries, clock.System().Now(), report.PeriodAll))
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		}
		return tui.Run(loadDashboard)
	},
}

// loadDashboard assembles one dashboard snapshot: full-history report plus,
// when a tracker is listening, its live session status.
func loadDashboard() (tui.Data, error) {
	entries, err := loadEntries("", "", stats.Filter{})
	if err != nil {
		return tui.Data{}, err
	}
	d := tui.Data{
		Report: report.Build(entries, clock.System().Now(), report.PeriodAll),
	}

	sock, err := store.SocketPath()
	if err != nil {
		return d, nil
	}
	if st, err := ipc.NewClient(sock).Status(); err == nil {
		d.Live = true
		d.Status = st
	}
	return d, nil
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardPlain, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(dashboardCmd)
}
