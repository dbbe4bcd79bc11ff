package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/marcin-skalski/pomo/internal/api"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focused time per task",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		totals, err := a.client.TaskAnalytics(ctx, token)
		if err != nil {
			return fmt.Errorf("task analytics: %w", err)
		}
		if len(totals) == 0 {
			color.New(color.FgYellow).Println("No tasks yet")
			return nil
		}

		sortByMinutes(totals)
		color.New(color.FgCyan, color.Bold).Printf("%s  %s  %s\n", pad("ID", 6), pad("TIME", 8), "TASK")
		sum := 0
		for _, t := range totals {
			sum += t.TotalMinutes
			fmt.Printf("%s  %s  %s\n",
				pad(strconv.FormatUint(uint64(t.TaskID), 10), 6),
				pad(formatMinutes(t.TotalMinutes), 8),
				pad(t.Title, 48))
		}
		color.New(color.FgGreen).Printf("\n%s across %d tasks\n", formatMinutes(sum), len(totals))
		return nil
	})
}

// sortByMinutes puts the most worked-on tasks first.
func sortByMinutes(totals []api.TaskTime) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalMinutes > totals[j].TotalMinutes
	})
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
