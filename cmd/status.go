package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/clock"
	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/ipc"
	"github.com/fakeyudi/codeclock/internal/report"
	"github.com/fakeyudi/codeclock/internal/stats"
	"github.com/fakeyudi/codeclock/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tracking state",
	RunE: func(cmd *cobra.Command, args []string) error {
		sock, err := store.SocketPath()
		if err != nil {
			return err
		}

		st, err := ipc.NewClient(sock).Status()
		if err != nil {
			if errors.Is(err, ipc.ErrNotRunning) {
				return storedStatus(cmd)
			}
			return err
		}

		cmd.Printf("State: %s\n", st.State)
		cmd.Printf("Project: %s\n", st.Project)
		cmd.Printf("Branch: %s\n", st.Branch)
		cmd.Printf("Language: %s\n", st.Language)
		cmd.Printf("Session started: %s\n", st.StartedAt.Format(time.RFC3339))
		cmd.Printf("Last activity: %s\n", st.LastActivityAt.Format(time.RFC3339))
		cmd.Printf("Unflushed: %s\n", (time.Duration(st.PendingSeconds * float64(time.Second))).Round(time.Second))
		cmd.Printf("Today: %s\n", report.FormatDuration(st.TodayMinutes))
		cmd.Printf("Project today: %s\n", report.FormatDuration(st.ProjectMinutes))
		return nil
	},
}

// storedStatus reports today's totals straight from the store when no
// tracker is listening on the socket.
func storedStatus(cmd *cobra.Command) error {
	cmd.Println("tracker is not running (start one with 'codeclock track')")

	es, err := store.OpenDefault()
	if err != nil {
		return err
	}
	defer es.Close()

	now := clock.System().Now()
	entries, err := es.ListEntries("", entry.DateOf(now))
	if err != nil {
		return err
	}
	r := stats.Rollups(entries, now)
	cmd.Printf("Today: %s\n", report.FormatDuration(r.Today))
	cmd.Printf("This week: %s\n", report.FormatDuration(r.Week))
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
