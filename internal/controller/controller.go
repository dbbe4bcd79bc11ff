package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcin-skalski/pomo/internal/api"
	"github.com/marcin-skalski/pomo/internal/auth"
	"github.com/marcin-skalski/pomo/internal/timer"
	"github.com/marcin-skalski/pomo/internal/tui"
)

// SessionStore persists completed work sessions.
type SessionStore interface {
	ListSessions(ctx context.Context, token string) ([]api.Session, error)
	CreateSession(ctx context.Context, token string, rec timer.SessionRecord) (*api.Session, error)
}

type Options struct {
	// TickInterval is the clock period; one engine tick per period.
	TickInterval  time.Duration
	UploadTimeout time.Duration

	// NewTicker and Now replace the wall clock in tests.
	NewTicker func(time.Duration) (<-chan time.Time, func())
	Now       func() time.Time
}

// Controller owns the timer engine and is the only caller of its methods.
type Controller struct {
	store   SessionStore
	logger  *slog.Logger
	options Options

	mu         sync.Mutex
	engine     *timer.Engine
	session    *auth.Session
	task       *uint
	clockStop  chan struct{}
	history    []api.Session
	historyOK  bool
	lastErr    string
	events     []chan Event
	closed     bool
	uploads    sync.WaitGroup
	clockGroup sync.WaitGroup
}

func New(cfg timer.Config, store SessionStore, options Options, logger *slog.Logger) *Controller {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.UploadTimeout <= 0 {
		options.UploadTimeout = 10 * time.Second
	}
	if options.NewTicker == nil {
		options.NewTicker = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Controller{
		store:   store,
		logger:  logger.With("component", "controller"),
		options: options,
		engine:  timer.New(cfg),
	}
}

// SetSession attaches the credential used for uploads and history.
func (c *Controller) SetSession(s auth.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &s
}

// SetTask links the following work sessions to a task. nil unlinks them.
func (c *Controller) SetTask(id *uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.task = copyID(id)
}

// ClearSession detaches the credential, stops the clock and forgets history.
func (c *Controller) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.history = nil
	c.historyOK = false
	c.lastErr = ""
	c.engine.Pause()
	c.stopClockLocked()
}

// LoadHistory fetches the stored sessions once. Failures are logged and
// otherwise ignored.
func (c *Controller) LoadHistory(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	sessions, err := c.store.ListSessions(ctx, session.Token)
	if err != nil {
		c.logger.Warn("load history failed", "err", err)
		return err
	}
	api.SortRecentFirst(sessions)

	c.mu.Lock()
	c.history = sessions
	c.historyOK = true
	c.mu.Unlock()
	c.logger.Info("history loaded", "sessions", len(sessions))
	return nil
}

func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.engine.Start()
	c.startClockLocked()
	c.logger.Debug("timer started", "phase", c.engine.State().Phase)
}

func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Pause()
	c.stopClockLocked()
}

// Toggle starts a paused timer and pauses a running one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	running := c.engine.State().Running
	c.mu.Unlock()
	if running {
		c.Pause()
	} else {
		c.Start()
	}
}

func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Reset()
	c.stopClockLocked()
}

// SwitchPhase stops the clock and jumps to p. Unknown phases are ignored.
func (c *Controller) SwitchPhase(p timer.Phase) {
	if !p.Valid() {
		c.logger.Warn("ignoring switch to unknown phase", "phase", p)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SwitchPhase(p)
	c.stopClockLocked()
	c.emitLocked(Event{Type: EventPhaseSwitched, State: c.engine.State(), At: c.options.Now()})
}

// Close stops the clock, closes subscribers and waits up to timeout for
// in-flight uploads.
func (c *Controller) Close(timeout time.Duration) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.engine.Pause()
	c.stopClockLocked()
	c.mu.Unlock()

	c.clockGroup.Wait()

	done := make(chan struct{})
	go func() {
		c.uploads.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		c.logger.Warn("gave up waiting for session uploads", "timeout", timeout)
	}

	c.mu.Lock()
	events := c.events
	c.events = nil
	c.mu.Unlock()
	for _, ch := range events {
		close(ch)
	}
}

func (c *Controller) State() timer.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.State()
}

func (c *Controller) GetSnapshot() tui.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.engine.State()
	history := make([]tui.SessionState, 0, len(c.history))
	for _, s := range c.history {
		history = append(history, tui.SessionState{
			ID:       s.ID,
			Start:    s.StartTime,
			End:      s.EndTime,
			Duration: s.Duration,
		})
	}

	return tui.Snapshot{
		Timestamp:        c.options.Now(),
		Phase:            st.Phase,
		SecondsRemaining: st.SecondsRemaining,
		Running:          st.Running,
		CompletedCycles:  st.CompletedWorkCycles,
		CycleInRound:     c.engine.CycleInRound(),
		CyclesPerRound:   c.engine.Config().CyclesBeforeLongBreak,
		History:          history,
		HistoryLoaded:    c.historyOK,
		LastError:        c.lastErr,
		TaskID:           copyID(c.task),
	}
}

func (c *Controller) startClockLocked() {
	if c.clockStop != nil {
		return
	}
	stop := make(chan struct{})
	c.clockStop = stop
	ticks, stopTicker := c.options.NewTicker(c.options.TickInterval)

	c.clockGroup.Add(1)
	go func() {
		defer c.clockGroup.Done()
		defer stopTicker()
		for {
			select {
			case <-stop:
				return
			case <-ticks:
				if !c.tick(stop) {
					return
				}
			}
		}
	}()
}

func (c *Controller) stopClockLocked() {
	if c.clockStop == nil {
		return
	}
	close(c.clockStop)
	c.clockStop = nil
}

// tick advances the engine once. It reports false when the clock that
// delivered the tick has been stopped in the meantime.
func (c *Controller) tick(stop chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clockStop != stop {
		return false
	}

	now := c.options.Now()
	completion := c.engine.Tick(now)
	st := c.engine.State()
	if completion == nil {
		c.emitLocked(Event{Type: EventTick, State: st, At: now})
		return true
	}

	c.logger.Info("phase complete",
		"completed", completion.Completed,
		"next", completion.Next,
		"cycles", completion.Cycles)
	c.emitLocked(Event{Type: EventPhaseComplete, State: st, Completion: completion, At: now})

	if completion.Session != nil {
		c.uploadLocked(*completion.Session)
	}
	if !st.Running {
		c.stopClockLocked()
		return false
	}
	return true
}

func (c *Controller) uploadLocked(rec timer.SessionRecord) {
	if c.session == nil {
		c.logger.Debug("no session, completed pomodoro not uploaded")
		return
	}
	token := c.session.Token
	rec.TaskID = copyID(c.task)

	c.uploads.Add(1)
	go func() {
		defer c.uploads.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.options.UploadTimeout)
		defer cancel()

		created, err := c.store.CreateSession(ctx, token, rec)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.logger.Warn("session upload failed", "start", rec.StartTime, "err", err)
			c.lastErr = "could not save session: " + err.Error()
			c.emitLocked(Event{Type: EventSessionFailed, State: c.engine.State(), Record: &rec, Err: err, At: c.options.Now()})
			return
		}
		c.lastErr = ""
		if c.session != nil && c.session.Token == token {
			c.history = append([]api.Session{*created}, c.history...)
		}
		c.logger.Info("session recorded", "id", created.ID, "duration_min", created.Duration)
		c.emitLocked(Event{Type: EventSessionRecorded, State: c.engine.State(), Record: &rec, At: c.options.Now()})
	}()
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
