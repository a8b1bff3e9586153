package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/codeclock/internal/report"
	"github.com/fakeyudi/codeclock/internal/stats"
)

var (
	searchFrom     string
	searchTo       string
	searchProject  string
	searchBranch   string
	searchLanguage string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List tracked entries matching filters",
	Long: `Search lists raw time entries, optionally narrowed by date range
(YYYY-MM-DD) and by project, branch or language.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := stats.Filter{
			Project:  searchProject,
			Branch:   searchBranch,
			Language: searchLanguage,
		}
		entries, err := loadEntries(searchFrom, searchTo, f)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("(no entries matched)")
			return nil
		}

		cmd.Printf("%-12s %-24s %-20s %-12s %9s\n", "DATE", "PROJECT", "BRANCH", "LANGUAGE", "TIME")
		var total float64
		for _, e := range entries {
			cmd.Printf("%-12s %-24s %-20s %-12s %9s\n",
				e.Date, e.Project, e.Branch, e.Language, report.FormatDuration(e.Minutes))
			total += e.Minutes
		}
		cmd.Printf("\n%d entries, %s total\n", len(entries), report.FormatDuration(total))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "earliest date to include (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "latest date to include (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchProject, "project", "", "only entries for this project")
	searchCmd.Flags().StringVar(&searchBranch, "branch", "", "only entries for this branch")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "only entries for this language")
	rootCmd.AddCommand(searchCmd)
}
