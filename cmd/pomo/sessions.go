package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/marcin-skalski/pomo/internal/api"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	sessionTask     uint
	sessionDuration int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded work sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Link a session to a task or correct its length",
	Example: `  pomo sessions update 42 --task 3
  pomo sessions update 42 --duration 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsUpdate,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Short:   "Delete one recorded session",
	Example: `  pomo sessions delete 42`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSessionsDelete,
}

func init() {
	sessionsUpdateCmd.Flags().UintVar(&sessionTask, "task", 0, "Task ID to link the session to")
	sessionsUpdateCmd.Flags().IntVar(&sessionDuration, "duration", 0, "Session length in minutes")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsUpdateCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		sessions, err := a.client.ListSessions(ctx, token)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(sessions) == 0 {
			color.New(color.FgYellow).Println("No sessions recorded yet")
			return nil
		}

		color.New(color.FgCyan, color.Bold).Printf("%s  %s  %s  %s  %s\n",
			pad("ID", 6), pad("STARTED", 16), pad("ENDED", 16), pad("MINUTES", 7), "TASK")

		api.SortRecentFirst(sessions)
		today := 0
		y, m, d := time.Now().Date()
		for _, s := range sessions {
			start := s.StartTime.Local()
			if sy, sm, sd := start.Date(); sy == y && sm == m && sd == d {
				today++
			}
			task := "-"
			if s.TaskID != nil {
				task = "#" + strconv.FormatUint(uint64(*s.TaskID), 10)
			}
			fmt.Printf("%s  %s  %s  %s  %s\n",
				pad(strconv.FormatUint(uint64(s.ID), 10), 6),
				pad(start.Format("2006-01-02 15:04"), 16),
				pad(s.EndTime.Local().Format("2006-01-02 15:04"), 16),
				pad(strconv.Itoa(s.Duration), 7),
				task)
		}

		color.New(color.FgGreen).Printf("\n%d sessions, %d today\n", len(sessions), today)
		return nil
	})
}

func runSessionsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	var update api.SessionUpdate
	if cmd.Flags().Changed("task") {
		if sessionTask == 0 {
			return fmt.Errorf("invalid task id: 0")
		}
		task := sessionTask
		update.TaskID = &task
	}
	if cmd.Flags().Changed("duration") {
		if sessionDuration < 1 {
			return fmt.Errorf("duration must be at least 1 minute, got %d", sessionDuration)
		}
		minutes := sessionDuration
		update.Duration = &minutes
	}
	if update.TaskID == nil && update.Duration == nil {
		return fmt.Errorf("nothing to update, pass --task or --duration")
	}

	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		s, err := a.client.UpdateSession(ctx, token, id, update)
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ Updated session %d (%d min)\n", s.ID, s.Duration)
		return nil
	})
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		if err := a.client.DeleteSession(ctx, token, id); err != nil {
			return fmt.Errorf("delete session %d: %w", id, err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ Deleted session %d\n", id)
		return nil
	})
}

func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
