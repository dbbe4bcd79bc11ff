package timer

import (
	"fmt"
	"time"
)

// Phase is one of the three timer modes.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Phases lists every phase in display order.
var Phases = []Phase{PhaseWork, PhaseShortBreak, PhaseLongBreak}

func (p Phase) Valid() bool {
	switch p {
	case PhaseWork, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// Label returns the human-readable name shown in the UI and logs.
func (p Phase) Label() string {
	switch p {
	case PhaseWork:
		return "Pomodoro"
	case PhaseShortBreak:
		return "Short break"
	case PhaseLongBreak:
		return "Long break"
	default:
		return string(p)
	}
}

// ParsePhase accepts the canonical names plus a few shorthands.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "work", "pomodoro", "focus":
		return PhaseWork, nil
	case "short_break", "short":
		return PhaseShortBreak, nil
	case "long_break", "long":
		return PhaseLongBreak, nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

const (
	DefaultWork                  = 25 * time.Minute
	DefaultShortBreak            = 5 * time.Minute
	DefaultLongBreak             = 15 * time.Minute
	DefaultCyclesBeforeLongBreak = 4
)

// Config holds the phase durations and the long-break cadence.
type Config struct {
	Work                  time.Duration
	ShortBreak            time.Duration
	LongBreak             time.Duration
	CyclesBeforeLongBreak int

	// AutoStart keeps the countdown running across natural phase transitions.
	AutoStart bool
}

// DefaultConfig returns the classic 25/5/15 schedule with a long break every fourth cycle.
func DefaultConfig() Config {
	return Config{
		Work:                  DefaultWork,
		ShortBreak:            DefaultShortBreak,
		LongBreak:             DefaultLongBreak,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
	}
}

func (c Config) durationOf(p Phase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return c.ShortBreak
	case PhaseLongBreak:
		return c.LongBreak
	default:
		return c.Work
	}
}

// Seconds returns the full length of a phase in whole seconds.
func (c Config) Seconds(p Phase) int {
	return int(c.durationOf(p) / time.Second)
}
