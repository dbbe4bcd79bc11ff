package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcin-skalski/pomo/internal/logging"
	"github.com/marcin-skalski/pomo/internal/timer"
)

const testToken = "tok-123"

// fakeServer mimics the pomodoro API closely enough for the client.
type fakeServer struct {
	mu        sync.Mutex
	users     map[string]string
	sessions  []map[string]any
	tasks     []map[string]any
	lastBody  map[string]any
	requestID string
}

func newFakeServer(t *testing.T) (*fakeServer, *Client) {
	t.Helper()
	fs := &fakeServer{users: map[string]string{"ann@example.com": "secret1"}}

	r := mux.NewRouter()
	r.HandleFunc("/login", fs.login).Methods(http.MethodPost)
	r.HandleFunc("/register", fs.register).Methods(http.MethodPost)
	r.Handle("/pomodoro", fs.requireToken(fs.listSessions)).Methods(http.MethodGet)
	r.Handle("/pomodoro", fs.requireToken(fs.createSession)).Methods(http.MethodPost)
	r.Handle("/pomodoro/{id:[0-9]+}", fs.requireToken(fs.updateSession)).Methods(http.MethodPut)
	r.Handle("/pomodoro/{id:[0-9]+}", fs.requireToken(fs.deleteSession)).Methods(http.MethodDelete)
	r.Handle("/tasks", fs.requireToken(fs.listTasks)).Methods(http.MethodGet)
	r.Handle("/tasks", fs.requireToken(fs.createTask)).Methods(http.MethodPost)
	r.Handle("/tasks/{id:[0-9]+}", fs.requireToken(fs.updateTask)).Methods(http.MethodPut)
	r.Handle("/tasks/{id:[0-9]+}", fs.requireToken(fs.deleteTask)).Methods(http.MethodDelete)
	r.Handle("/analytics/tasks-time", fs.requireToken(fs.taskAnalytics)).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fs, NewClient(srv.URL, 2*time.Second, logging.Discard())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fs *fakeServer) decode(r *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	fs.mu.Lock()
	fs.lastBody = body
	fs.requestID = r.Header.Get("X-Request-ID")
	fs.mu.Unlock()
	return body
}

func (fs *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	fs.mu.Lock()
	stored, ok := fs.users[email]
	fs.mu.Unlock()
	if !ok || stored != password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": testToken})
}

func (fs *fakeServer) register(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.users[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already in use"})
		return
	}
	fs.users[email] = password
	writeJSON(w, http.StatusOK, map[string]string{"token": "fresh"})
}

func (fs *fakeServer) body() map[string]any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.lastBody
}

func (fs *fakeServer) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *fakeServer) listSessions(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	writeJSON(w, http.StatusOK, fs.sessions)
}

func (fs *fakeServer) createSession(w http.ResponseWriter, r *http.Request) {
	body := fs.decode(r)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	// Untagged server struct: capitalised keys.
	created := map[string]any{
		"ID":        len(fs.sessions) + 1,
		"Duration":  body["duration"],
		"StartTime": body["start_time"],
		"EndTime":   body["end_time"],
		"TaskID":    body["task_id"],
	}
	fs.sessions = append(fs.sessions, created)
	writeJSON(w, http.StatusOK, created)
}

func (fs *fakeServer) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "404" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

func TestLogin(t *testing.T) {
	fs, client := newFakeServer(t)

	token, err := client.Login(context.Background(), "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != testToken {
		t.Fatalf("token = %q", token)
	}
	if body := fs.body(); body["email"] != "ann@example.com" || body["password"] != "secret1" {
		t.Fatalf("unexpected request body: %v", body)
	}
	fs.mu.Lock()
	requestID := fs.requestID
	fs.mu.Unlock()
	if requestID == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestLoginRejected(t *testing.T) {
	_, client := newFakeServer(t)

	_, err := client.Login(context.Background(), "ann@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized || !apiErr.Unauthorized() {
		t.Fatalf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "invalid email or password" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	_, client := newFakeServer(t)
	ctx := context.Background()

	if err := client.Register(ctx, "bob@example.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := client.Register(ctx, "bob@example.com", "hunter22")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "email already in use" {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCreateAndListSessions(t *testing.T) {
	fs, client := newFakeServer(t)
	ctx := context.Background()

	end := time.Date(2024, 5, 2, 10, 25, 0, 0, time.UTC)
	rec := timer.SessionRecord{DurationMinutes: 25, StartTime: end.Add(-25 * time.Minute), EndTime: end}

	created, err := client.CreateSession(ctx, testToken, rec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 || created.Duration != 25 || !created.StartTime.Equal(rec.StartTime) || !created.EndTime.Equal(end) {
		t.Fatalf("unexpected created session: %+v", created)
	}
	body := fs.body()
	if body["start_time"] != "2024-05-02T10:00:00Z" || body["end_time"] != "2024-05-02T10:25:00Z" {
		t.Fatalf("timestamps not RFC 3339: %v", body)
	}
	if body["duration"] != float64(25) {
		t.Fatalf("duration = %v", body["duration"])
	}

	sessions, err := client.ListSessions(ctx, testToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != 1 || !sessions[0].EndTime.Equal(end) {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	_, client := newFakeServer(t)

	_, err := client.ListSessions(context.Background(), "stale")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	_, client := newFakeServer(t)
	ctx := context.Background()

	if err := client.DeleteSession(ctx, testToken, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err := client.DeleteSession(ctx, testToken, 404)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "session not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, logging.Discard())
	_, err := client.Login(context.Background(), "a@b.c", "pw")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
	if netErr.Op != "login" {
		t.Fatalf("op = %q", netErr.Op)
	}
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, logging.Discard())
	err := client.Register(context.Background(), "a@b.c", "pw")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "" || apiErr.Status != 500 {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestSessionDecodesBothKeyStyles(t *testing.T) {
	payload := `[
		{"id": 2, "duration": 25, "start_time": "2024-05-02T09:00:00Z", "end_time": "2024-05-02T09:25:00Z", "task_id": 9},
		{"ID": 3, "Duration": 50, "StartTime": "2024-05-02T11:00:00Z", "EndTime": "2024-05-02T11:50:00Z", "TaskID": null, "CreatedAt": "2024-05-02T11:50:01Z"}
	]`
	var sessions []Session
	if err := json.Unmarshal([]byte(payload), &sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sessions[0].ID != 2 || sessions[0].TaskID == nil || *sessions[0].TaskID != 9 {
		t.Fatalf("snake_case session: %+v", sessions[0])
	}
	if sessions[1].ID != 3 || sessions[1].Duration != 50 || sessions[1].StartTime.Hour() != 11 || sessions[1].EndTime.Minute() != 50 {
		t.Fatalf("capitalised session: %+v", sessions[1])
	}
}
