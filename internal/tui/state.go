package tui

import (
	"time"

	"github.com/marcin-skalski/pomo/internal/timer"
)

type Snapshot struct {
	Timestamp        time.Time
	Phase            timer.Phase
	SecondsRemaining int
	Running          bool
	CompletedCycles  int
	CycleInRound     int
	CyclesPerRound   int
	History          []SessionState
	HistoryLoaded    bool
	LastError        string
	TaskID           *uint
}

type SessionState struct {
	ID       uint
	Start    time.Time
	End      time.Time
	Duration int // minutes
}
