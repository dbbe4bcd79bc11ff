// Package auth signs users in and out of the pomodoro API and keeps the
// issued bearer token on disk.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcin-skalski/pomo/internal/api"
)

// Session is the credential handed to components that call protected
// endpoints.
type Session struct {
	Token string
}

// State is either LoggedOut or LoggedIn.
type State interface {
	isState()
}

type LoggedOut struct{}

type LoggedIn struct {
	Session Session
}

func (LoggedOut) isState() {}
func (LoggedIn) isState()  {}

// ValidationError is a form problem detected before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMissingFields    = &ValidationError{Message: "email and password are required"}
	ErrPasswordMismatch = &ValidationError{Message: "passwords do not match"}
)

// ErrSignInAfterRegister wraps the login failure that follows a
// successful registration.
var ErrSignInAfterRegister = errors.New("registered, but could not sign in")

type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) error
}

type Service struct {
	client Client
	store  TokenStore
	logger *slog.Logger
}

func NewService(client Client, store TokenStore, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.With("component", "auth"),
	}
}

// Restore decides the initial state from the stored token.
func (s *Service) Restore() State {
	token, err := s.store.Load()
	if err != nil {
		s.logger.Warn("could not read stored token", "err", err)
		return LoggedOut{}
	}
	if token == "" {
		return LoggedOut{}
	}
	return LoggedIn{Session: Session{Token: token}}
}

func (s *Service) Login(ctx context.Context, email, password string) (State, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoggedOut{}, ErrMissingFields
	}
	return s.signIn(ctx, email, password)
}

// Register creates the account and signs straight in with the same
// credentials.
func (s *Service) Register(ctx context.Context, email, password, confirm string) (State, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoggedOut{}, ErrMissingFields
	}
	if password != confirm {
		return LoggedOut{}, ErrPasswordMismatch
	}

	if err := s.client.Register(ctx, email, password); err != nil {
		s.logger.Info("registration failed", "email", email, "err", err)
		return LoggedOut{}, fmt.Errorf("register: %w", err)
	}
	s.logger.Info("registered", "email", email)

	state, err := s.signIn(ctx, email, password)
	if err != nil {
		return LoggedOut{}, fmt.Errorf("%w: %w", ErrSignInAfterRegister, err)
	}
	return state, nil
}

func (s *Service) Logout() (State, error) {
	if err := s.store.Clear(); err != nil {
		return nil, err
	}
	s.logger.Info("logged out")
	return LoggedOut{}, nil
}

func (s *Service) signIn(ctx context.Context, email, password string) (State, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.logger.Info("login failed", "email", email, "err", err)
		return LoggedOut{}, fmt.Errorf("login: %w", err)
	}
	if err := s.store.Save(token); err != nil {
		return LoggedOut{}, err
	}
	s.logger.Info("logged in", "email", email)
	return LoggedIn{Session: Session{Token: token}}, nil
}

// Form identifies which form an error message is for.
type Form int

const (
	FormLogin Form = iota
	FormRegister
)

// Message turns an error from Login or Register into the single line
// shown under the form.
func Message(form Form, err error) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	if errors.Is(err, ErrSignInAfterRegister) {
		return ErrSignInAfterRegister.Error()
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if form == FormRegister {
			return "registration failed"
		}
		return "sign-in failed"
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return "network error"
	}
	return err.Error()
}
