package api

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/marcin-skalski/pomo/internal/timer"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type createSessionRequest struct {
	TaskID    *uint  `json:"task_id,omitempty"`
	Duration  int    `json:"duration"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func newCreateSessionRequest(rec timer.SessionRecord) createSessionRequest {
	return createSessionRequest{
		TaskID:    rec.TaskID,
		Duration:  rec.DurationMinutes,
		StartTime: rec.StartTime.UTC().Format(time.RFC3339Nano),
		EndTime:   rec.EndTime.UTC().Format(time.RFC3339Nano),
	}
}

// SessionUpdate is a partial update of a stored session. nil fields are
// left unchanged by the server.
type SessionUpdate struct {
	TaskID    *uint      `json:"task_id,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Session is one stored pomodoro as returned by GET /pomodoro.
type Session struct {
	ID        uint      `json:"id"`
	Duration  int       `json:"duration"` // minutes
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	TaskID    *uint     `json:"task_id,omitempty"`
}

// UnmarshalJSON accepts snake_case keys as well as the field names a Go
// server emits for untagged structs (ID, StartTime, ...).
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        uint       `json:"id"`
		Duration  int        `json:"duration"`
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		TaskID    *uint      `json:"task_id"`

		GoStartTime *time.Time `json:"StartTime"`
		GoEndTime   *time.Time `json:"EndTime"`
		GoTaskID    *uint      `json:"TaskID"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Session{ID: raw.ID, Duration: raw.Duration, TaskID: raw.TaskID}
	if s.TaskID == nil {
		s.TaskID = raw.GoTaskID
	}
	switch {
	case raw.StartTime != nil:
		s.StartTime = *raw.StartTime
	case raw.GoStartTime != nil:
		s.StartTime = *raw.GoStartTime
	}
	switch {
	case raw.EndTime != nil:
		s.EndTime = *raw.EndTime
	case raw.GoEndTime != nil:
		s.EndTime = *raw.GoEndTime
	}
	return nil
}

// SortRecentFirst orders sessions by start time, newest first.
func SortRecentFirst(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
}
