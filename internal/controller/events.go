package controller

import (
	"time"

	"github.com/marcin-skalski/pomo/internal/timer"
)

type EventType string

const (
	EventTick            EventType = "tick"
	EventPhaseComplete   EventType = "phase_complete"
	EventPhaseSwitched   EventType = "phase_switched"
	EventSessionRecorded EventType = "session_recorded"
	EventSessionFailed   EventType = "session_failed"
)

// Event is a controller update for observers.
type Event struct {
	Type       EventType
	State      timer.State
	Completion *timer.Completion
	Record     *timer.SessionRecord
	Err        error
	At         time.Time
}

// Subscribe registers an observer. Events are dropped when the channel
// is full so a slow reader never stalls the clock.
func (c *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.events = append(c.events, ch)
	return ch
}

func (c *Controller) emitLocked(event Event) {
	for _, ch := range c.events {
		select {
		case ch <- event:
		default:
		}
	}
}
