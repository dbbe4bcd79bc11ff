package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/marcin-skalski/pomo/internal/timer"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "api"),
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, "login", http.MethodPost, "/login", "", credentials{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &NetworkError{Op: "login", Err: errors.New("response carried no token")}
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, "register", http.MethodPost, "/register", "", credentials{Email: email, Password: password}, nil)
}

func (c *Client) ListSessions(ctx context.Context, token string) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, "list sessions", http.MethodGet, "/pomodoro", token, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession stores a completed work phase. The server's copy is
// returned when it echoes one back.
func (c *Client) CreateSession(ctx context.Context, token string, rec timer.SessionRecord) (*Session, error) {
	var created Session
	if err := c.do(ctx, "create session", http.MethodPost, "/pomodoro", token, newCreateSessionRequest(rec), &created); err != nil {
		return nil, err
	}
	if created.StartTime.IsZero() {
		created.Duration = rec.DurationMinutes
		created.StartTime = rec.StartTime
		created.EndTime = rec.EndTime
		created.TaskID = rec.TaskID
	}
	return &created, nil
}

// UpdateSession changes a stored session, typically to link it to a task.
func (c *Client) UpdateSession(ctx context.Context, token string, id uint, update SessionUpdate) (*Session, error) {
	var updated Session
	if err := c.do(ctx, "update session", http.MethodPut, sessionPath(id), token, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string, id uint) error {
	return c.do(ctx, "delete session", http.MethodDelete, sessionPath(id), token, nil, nil)
}

func sessionPath(id uint) string {
	return "/pomodoro/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "request_id", requestID, "err", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
