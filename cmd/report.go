package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/clock"
	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/ipc"
	"github.com/fakeyudi/codeclock/internal/report"
	"github.com/fakeyudi/codeclock/internal/stats"
	"github.com/fakeyudi/codeclock/internal/store"
)

var (
	reportPeriod string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time for a period",
	Long: `Report renders totals, rankings, streaks and a recent-activity strip
for the chosen period (day, week, month, year or all).

Entries come from the running tracker when one is listening on the
socket, otherwise straight from the local store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		periodName := reportPeriod
		if periodName == "" {
			periodName = cfg.DefaultPeriod
		}
		period, err := report.ParsePeriod(periodName)
		if err != nil {
			return err
		}

		var r report.Renderer
		switch reportFormat {
		case "text":
			r = report.TextRenderer{}
		case "json":
			r = report.JSONRenderer{}
		default:
			return fmt.Errorf("unknown format %q (expected text or json)", reportFormat)
		}

		entries, err := loadEntries("", "", stats.Filter{})
		if err != nil {
			return err
		}

		out, err := r.Render(report.Build(entries, clock.System().Now(), period))
		if err != nil {
			return err
		}
		cmd.Print(string(out))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "", "period to report on: day, week, month, year or all (default from config)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text or json")
	rootCmd.AddCommand(reportCmd)
}

// loadEntries fetches entries from the running tracker over the socket,
// falling back to a direct store read when no tracker is up. The store
// holds an exclusive lock while a tracker runs, so the socket is the only
// path to fresh data then.
func loadEntries(from, to string, f stats.Filter) ([]entry.TimeEntry, error) {
	sock, err := store.SocketPath()
	if err != nil {
		return nil, err
	}
	entries, err := ipc.NewClient(sock).Entries(from, to, f)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, ipc.ErrNotRunning) {
		return nil, err
	}

	es, err := store.OpenDefault()
	if err != nil {
		return nil, err
	}
	defer es.Close()

	all, err := es.ListEntries(from, to)
	if err != nil {
		return nil, err
	}
	return stats.FilterEntries(all, f), nil
}
