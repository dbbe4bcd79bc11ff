package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ParseTaskStatus accepts the wire names plus "in-progress" and "doing".
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return TaskPending, nil
	case "in_progress", "in-progress", "doing":
		return TaskInProgress, nil
	case "done":
		return TaskDone, nil
	}
	return "", fmt.Errorf("unknown task status %q (pending|in_progress|done)", s)
}

// Task is a unit of work that sessions can be linked to. The server emits
// untagged field names (ID, Title, ...), which encoding/json matches
// case-insensitively.
type Task struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}

// TaskTime is the total focused time recorded against one task.
type TaskTime struct {
	TaskID       uint   `json:"task_id"`
	Title        string `json:"title"`
	TotalMinutes int    `json:"total_minutes"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, "list tasks", http.MethodGet, "/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token, title, description string) (*Task, error) {
	var task Task
	req := createTaskRequest{Title: title, Description: description}
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", token, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, token string, id uint, update TaskUpdate) (*Task, error) {
	var task Task
	if err := c.do(ctx, "update task", http.MethodPut, taskPath(id), token, update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token string, id uint) error {
	return c.do(ctx, "delete task", http.MethodDelete, taskPath(id), token, nil, nil)
}

// TaskAnalytics returns the minutes recorded per task, including tasks
// with no sessions yet.
func (c *Client) TaskAnalytics(ctx context.Context, token string) ([]TaskTime, error) {
	var totals []TaskTime
	if err := c.do(ctx, "task analytics", http.MethodGet, "/analytics/tasks-time", token, nil, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

func taskPath(id uint) string {
	return "/tasks/" + strconv.FormatUint(uint64(id), 10)
}
