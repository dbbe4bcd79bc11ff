package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcin-skalski/pomo/internal/timer"
)

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (fs *fakeServer) listTasks(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	writeJSON(w, http.StatusOK, fs.tasks)
}

func (fs *fakeServer) createTask(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	title, _ := body["title"].(string)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	description, _ := body["description"].(string)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	task := map[string]any{
		"ID":          len(fs.tasks) + 1,
		"UserID":      1,
		"Title":       title,
		"Description": description,
		"Status":      "pending",
	}
	fs.tasks = append(fs.tasks, task)
	writeJSON(w, http.StatusOK, task)
}

func (fs *fakeServer) updateTask(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	id := pathID(r)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, task := range fs.tasks {
		if task["ID"] != id {
			continue
		}
		for in, out := range map[string]string{"title": "Title", "description": "Description", "status": "Status"} {
			if v, ok := body[in]; ok {
				task[out] = v
			}
		}
		writeJSON(w, http.StatusOK, task)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (fs *fakeServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	kept := fs.tasks[:0]
	for _, task := range fs.tasks {
		if task["ID"] != id {
			kept = append(kept, task)
		}
	}
	fs.tasks = kept
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

func (fs *fakeServer) taskAnalytics(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	totals := []map[string]any{}
	for _, task := range fs.tasks {
		id := float64(task["ID"].(int))
		minutes := 0.0
		for _, s := range fs.sessions {
			if s["TaskID"] == id {
				minutes += s["Duration"].(float64)
			}
		}
		totals = append(totals, map[string]any{
			"task_id":       task["ID"],
			"title":         task["Title"],
			"total_minutes": minutes,
		})
	}
	writeJSON(w, http.StatusOK, totals)
}

func (fs *fakeServer) updateSession(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	id := pathID(r)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, s := range fs.sessions {
		if s["ID"] != id {
			continue
		}
		if v, ok := body["task_id"]; ok {
			s["TaskID"] = v
		}
		if v, ok := body["duration"]; ok {
			s["Duration"] = v
		}
		writeJSON(w, http.StatusOK, s)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
}

func TestTaskLifecycle(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	task, err := client.CreateTask(ctx, testToken, "Write report", "quarterly numbers")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 1 || task.Title != "Write report" || task.Description != "quarterly numbers" || task.Status != TaskPending {
		t.Fatalf("unexpected task: %+v", task)
	}

	status := TaskInProgress
	updated, err := client.UpdateTask(ctx, testToken, task.ID, TaskUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != TaskInProgress || updated.Title != "Write report" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if _, sent := fs.body()["title"]; sent {
		t.Fatalf("partial update sent unset title: %v", fs.body())
	}

	tasks, err := client.ListTasks(ctx, testToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 1 || tasks[0].Status != TaskInProgress {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	if err := client.DeleteTask(ctx, testToken, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tasks, _ := client.ListTasks(ctx, testToken); len(tasks) != 0 {
		t.Fatalf("task not deleted: %+v", tasks)
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	_, client := newFakeServer(t)
	_, err := client.CreateTask(context.Background(), testToken, "", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Message != "title is required" {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUpdateMissingTask(t *testing.T) {
	_, client := newFakeServer(t)
	title := "x"
	_, err := client.UpdateTask(context.Background(), testToken, 42, TaskUpdate{Title: &title})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestSessionsLinkedToTasks(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	task, err := client.CreateTask(ctx, testToken, "Read paper", "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	end := time.Date(2024, 5, 2, 10, 25, 0, 0, time.UTC)
	rec := timer.SessionRecord{DurationMinutes: 25, StartTime: end.Add(-25 * time.Minute), EndTime: end, TaskID: &task.ID}
	created, err := client.CreateSession(ctx, testToken, rec)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if fs.body()["task_id"] != float64(task.ID) {
		t.Fatalf("task_id not sent: %v", fs.body())
	}
	if created.TaskID == nil || *created.TaskID != task.ID {
		t.Fatalf("created session task = %v", created.TaskID)
	}

	unlinked, err := client.CreateSession(ctx, testToken, timer.SessionRecord{DurationMinutes: 25, StartTime: end, EndTime: end.Add(25 * time.Minute)})
	if err != nil {
		t.Fatalf("create unlinked session: %v", err)
	}

	minutes := 15
	updated, err := client.UpdateSession(ctx, testToken, unlinked.ID, SessionUpdate{TaskID: &task.ID, Duration: &minutes})
	if err != nil {
		t.Fatalf("update session: %v", err)
	}
	if updated.TaskID == nil || *updated.TaskID != task.ID || updated.Duration != 15 {
		t.Fatalf("unexpected updated session: %+v", updated)
	}
	if _, sent := fs.body()["start_time"]; sent {
		t.Fatalf("partial update sent unset start_time: %v", fs.body())
	}

	totals, err := client.TaskAnalytics(ctx, testToken)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(totals) != 1 || totals[0].TaskID != task.ID || totals[0].Title != "Read paper" || totals[0].TotalMinutes != 40 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	if _, err := client.UpdateSession(ctx, testToken, 99, SessionUpdate{Duration: &minutes}); err == nil {
		t.Fatalf("expected 404 for unknown session")
	}
}

func TestParseTaskStatus(t *testing.T) {
	tests := map[string]TaskStatus{
		"pending":     TaskPending,
		"todo":        TaskPending,
		"In-Progress": TaskInProgress,
		"in_progress": TaskInProgress,
		"done":        TaskDone,
	}
	for in, want := range tests {
		got, err := ParseTaskStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseTaskStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseTaskStatus("blocked"); err == nil {
		t.Errorf("expected error for unknown status")
	}
}
