package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/marcin-skalski/pomo/internal/timer"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.State, error)
	Register(ctx context.Context, email, password, confirm string) (auth.State, error)
	Logout() (auth.State, error)
}

type TimerController interface {
	GetSnapshot() Snapshot
	Toggle()
	Reset()
	SwitchPhase(p timer.Phase)
	SetSession(s auth.Session)
	ClearSession()
	LoadHistory(ctx context.Context) error
}

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenTimer
)

type Options struct {
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
}

type Model struct {
	auth     Authenticator
	timer    TimerController
	options  Options
	screen   screen
	login    form
	register form
	snapshot Snapshot
	width    int
	notice   string
}

type refreshMsg time.Time

type authResultMsg struct {
	form  auth.Form
	state auth.State
	err   error
}

type historyLoadedMsg struct {
	err error
}

// NewModel builds the root model. initial decides the first screen.
func NewModel(a Authenticator, c TimerController, initial auth.State, options Options) Model {
	if options.RefreshInterval <= 0 {
		options.RefreshInterval = 200 * time.Millisecond
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = 10 * time.Second
	}

	m := Model{
		auth:     a,
		timer:    c,
		options:  options,
		screen:   screenLogin,
		login:    newLoginForm(),
		register: newRegisterForm(),
	}
	if in, ok := initial.(auth.LoggedIn); ok {
		c.SetSession(in.Session)
		m.screen = screenTimer
	}
	m.snapshot = c.GetSnapshot()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.options.RefreshInterval), textinput.Blink}
	if m.screen == screenTimer {
		cmds = append(cmds, m.loadHistoryCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshMsg:
		m.snapshot = m.timer.GetSnapshot()
		return m, tickCmd(m.options.RefreshInterval)

	case authResultMsg:
		return m.handleAuthResult(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.notice = "could not load history"
		}
		m.snapshot = m.timer.GetSnapshot()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenRegister:
			return m.updateRegister(msg)
		case screenTimer:
			return m.updateTimer(msg)
		}
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		cmd = m.login.update(msg)
	case screenRegister:
		cmd = m.register.update(msg)
	}
	return m, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		m.screen = screenRegister
		m.register = newRegisterForm()
		return m, nil
	case "enter":
		if m.login.busy {
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		return m, m.loginCmd(m.login.value(fieldEmail), m.login.value(fieldPassword))
	}
	cmd := m.login.update(msg)
	return m, cmd
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+b", "esc":
		m.screen = screenLogin
		return m, nil
	case "enter":
		if m.register.busy {
			return m, nil
		}
		m.register.busy = true
		m.register.err = ""
		return m, m.registerCmd(
			m.register.value(fieldEmail),
			m.register.value(fieldPassword),
			m.register.value(fieldConfirm))
	}
	cmd := m.register.update(msg)
	return m, cmd
}

func (m Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ", "s":
		m.timer.Toggle()
	case "r":
		m.timer.Reset()
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		m.timer.SwitchPhase(timer.Phases[idx])
	case "L":
		if _, err := m.auth.Logout(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.timer.ClearSession()
		m.screen = screenLogin
		m.login = newLoginForm()
		m.notice = ""
	}
	m.snapshot = m.timer.GetSnapshot()
	return m, nil
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	f := &m.login
	if msg.form == auth.FormRegister {
		f = &m.register
	}
	f.busy = false

	if msg.err != nil {
		f.err = auth.Message(msg.form, msg.err)
		return m, nil
	}
	in, ok := msg.state.(auth.LoggedIn)
	if !ok {
		return m, nil
	}

	m.timer.SetSession(in.Session)
	m.screen = screenTimer
	m.notice = ""
	m.snapshot = m.timer.GetSnapshot()
	return m, m.loadHistoryCmd()
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	a, timeout := m.auth, m.options.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		state, err := a.Login(ctx, email, password)
		return authResultMsg{form: auth.FormLogin, state: state, err: err}
	}
}

func (m Model) registerCmd(email, password, confirm string) tea.Cmd {
	a, timeout := m.auth, m.options.RequestTimeout
	return func() tea.Msg {
		// Register plus the follow-up login.
		ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
		defer cancel()
		state, err := a.Register(ctx, email, password, confirm)
		return authResultMsg{form: auth.FormRegister, state: state, err: err}
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	c, timeout := m.timer, m.options.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return historyLoadedMsg{err: c.LoadHistory(ctx)}
	}
}

func (m Model) View() string {
	switch m.screen {
	case screenLogin:
		return renderForm(m.login, "ctrl+n: create account │ tab: next field │ enter: submit │ ctrl+c: quit")
	case screenRegister:
		return renderForm(m.register, "ctrl+b: back to sign in │ tab: next field │ enter: submit │ ctrl+c: quit")
	default:
		return renderTimer(m.snapshot, m.notice, m.width)
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
