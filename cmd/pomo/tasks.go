package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/marcin-skalski/pomo/internal/api"
	"github.com/spf13/cobra"
)

var (
	taskTitle       string
	taskDescription string
	taskStatus      string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the tasks work sessions are recorded against",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:     "add TITLE",
	Short:   "Create a task",
	Example: `  pomo tasks add "Write report" --description "Q3 numbers"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runTasksAdd,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename a task or change its status",
	Example: `  pomo tasks update 3 --status in_progress
  pomo tasks update 3 --title "Write final report" --status done`,
	Args: cobra.ExactArgs(1),
	RunE: runTasksUpdate,
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDelete,
}

func init() {
	tasksAddCmd.Flags().StringVar(&taskDescription, "description", "", "Task description")

	tasksUpdateCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	tasksUpdateCmd.Flags().StringVar(&taskDescription, "description", "", "New description")
	tasksUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "New status (pending, in_progress, done)")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		tasks, err := a.client.ListTasks(ctx, token)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if len(tasks) == 0 {
			color.New(color.FgYellow).Println("No tasks yet, add one with `pomo tasks add TITLE`")
			return nil
		}

		color.New(color.FgCyan, color.Bold).Printf("%s  %s  %s\n", pad("ID", 6), pad("STATUS", 11), "TITLE")
		for _, t := range tasks {
			fmt.Printf("%s  %s  %s\n",
				pad(strconv.FormatUint(uint64(t.ID), 10), 6),
				statusColor(t.Status).Sprint(pad(string(t.Status), 11)),
				pad(t.Title, 48))
			if t.Description != "" {
				color.New(color.Faint).Printf("%s  %s  %s\n", pad("", 6), pad("", 11), pad(t.Description, 48))
			}
		}
		return nil
	})
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		t, err := a.client.CreateTask(ctx, token, args[0], taskDescription)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ Created task %d: %s\n", t.ID, t.Title)
		return nil
	})
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID("task", args[0])
	if err != nil {
		return err
	}

	var update api.TaskUpdate
	if cmd.Flags().Changed("title") {
		if taskTitle == "" {
			return errors.New("title cannot be empty")
		}
		title := taskTitle
		update.Title = &title
	}
	if cmd.Flags().Changed("description") {
		description := taskDescription
		update.Description = &description
	}
	if cmd.Flags().Changed("status") {
		status, err := api.ParseTaskStatus(taskStatus)
		if err != nil {
			return err
		}
		update.Status = &status
	}
	if update.Title == nil && update.Description == nil && update.Status == nil {
		return errors.New("nothing to update, pass --title, --description or --status")
	}

	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		t, err := a.client.UpdateTask(ctx, token, id, update)
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ Updated task %d: %s [%s]\n", t.ID, t.Title, t.Status)
		return nil
	})
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID("task", args[0])
	if err != nil {
		return err
	}

	return withToken(cmd, func(ctx context.Context, a *app, token string) error {
		if err := a.client.DeleteTask(ctx, token, id); err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		color.New(color.FgGreen, color.Bold).Printf("✓ Deleted task %d\n", id)
		return nil
	})
}

func statusColor(s api.TaskStatus) *color.Color {
	switch s {
	case api.TaskDone:
		return color.New(color.FgGreen)
	case api.TaskInProgress:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}
