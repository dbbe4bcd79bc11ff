package timer

import "time"

// State is a read-only copy of the engine's countdown state.
type State struct {
	Phase               Phase
	SecondsRemaining    int
	CompletedWorkCycles int
	Running             bool
}

// SessionRecord describes one naturally completed work phase.
type SessionRecord struct {
	DurationMinutes int
	StartTime       time.Time
	EndTime         time.Time

	// TaskID links the session to a task. The engine never sets it.
	TaskID *uint
}

// Completion is returned by Tick when a phase runs out.
type Completion struct {
	Completed Phase
	Next      Phase
	Cycles    int
	// Session is set only when the completed phase was PhaseWork.
	Session *SessionRecord
}

// Engine is the pomodoro phase/cycle state machine. It is not safe for
// concurrent use; callers serialise every method call.
type Engine struct {
	config Config
	state  State
}

// New creates an engine in a paused work phase with a full countdown.
func New(config Config) *Engine {
	defaults := DefaultConfig()
	if config.Work <= 0 {
		config.Work = defaults.Work
	}
	if config.ShortBreak <= 0 {
		config.ShortBreak = defaults.ShortBreak
	}
	if config.LongBreak <= 0 {
		config.LongBreak = defaults.LongBreak
	}
	if config.CyclesBeforeLongBreak <= 0 {
		config.CyclesBeforeLongBreak = defaults.CyclesBeforeLongBreak
	}

	engine := &Engine{config: config}
	engine.state.Phase = PhaseWork
	engine.state.SecondsRemaining = config.Seconds(PhaseWork)
	return engine
}

func (e *Engine) Config() Config { return e.config }

func (e *Engine) State() State { return e.state }

// CycleInRound is the number of work cycles completed since the last long break.
func (e *Engine) CycleInRound() int {
	return e.state.CompletedWorkCycles % e.config.CyclesBeforeLongBreak
}

func (e *Engine) Start() {
	e.state.Running = true
}

func (e *Engine) Pause() {
	e.state.Running = false
}

// Reset stops the countdown and refills the current phase.
func (e *Engine) Reset() {
	e.state.Running = false
	e.state.SecondsRemaining = e.config.Seconds(e.state.Phase)
}

// SwitchPhase jumps to target with a full, stopped countdown. The cycle
// counter is left alone.
func (e *Engine) SwitchPhase(target Phase) {
	if !target.Valid() {
		return
	}
	e.state.Phase = target
	e.state.Running = false
	e.state.SecondsRemaining = e.config.Seconds(target)
}

// Tick advances the countdown by one second. The tick that brings the
// countdown to zero also completes the phase.
func (e *Engine) Tick(now time.Time) *Completion {
	if !e.state.Running {
		return nil
	}
	if e.state.SecondsRemaining > 0 {
		e.state.SecondsRemaining--
	}
	if e.state.SecondsRemaining > 0 {
		return nil
	}
	return e.complete(now)
}

func (e *Engine) complete(now time.Time) *Completion {
	completed := e.state.Phase
	e.state.Running = false

	result := &Completion{Completed: completed}
	next := PhaseWork
	if completed == PhaseWork {
		result.Session = &SessionRecord{
			DurationMinutes: int(e.config.Work / time.Minute),
			StartTime:       now.Add(-e.config.Work),
			EndTime:         now,
		}
		e.state.CompletedWorkCycles++
		if e.state.CompletedWorkCycles%e.config.CyclesBeforeLongBreak == 0 {
			next = PhaseLongBreak
		} else {
			next = PhaseShortBreak
		}
	}

	e.state.Phase = next
	e.state.SecondsRemaining = e.config.Seconds(next)
	e.state.Running = e.config.AutoStart

	result.Next = next
	result.Cycles = e.state.CompletedWorkCycles
	return result
}
