package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/restkit/packages/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded calls",
	Long: `Show calls recorded with "restkit send --history".

Examples:
  restkit history --db ~/.restkit/history.db
  restkit history --db history.db --limit 20`,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", "", "history database path (required)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 50, "maximum entries to show")
	_ = historyCmd.MarkFlagRequired("db")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyDBFlag)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded calls.")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, e := range entries {
		mark := green("✓")
		if !e.OK {
			mark = red("✗")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %-6s %-40s %3d  %4dms", mark,
			e.At.Format("2006-01-02 15:04:05"), e.Method, e.URL, e.Status, e.DurationMs)
		if e.Message != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s", e.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
