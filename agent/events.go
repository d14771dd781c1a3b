package agent

import (
	"sync"
	"time"
)

// EventKind identifies the type of session event.
type EventKind string

const (
	EventSessionStart EventKind = "session_start"
	EventSessionEnd   EventKind = "session_end"
	EventRunStart     EventKind = "run_start"
	EventRunEnd       EventKind = "run_end"
	EventRunError     EventKind = "run_error"
	EventStageStart   EventKind = "stage_start"
	EventStageEnd     EventKind = "stage_end"
	EventRoute        EventKind = "route"
)

// Event is a typed notification emitted by a Session.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	RunID     string         `json:"run_id,omitempty"`
	Stage     Stage          `json:"stage,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Listener is called synchronously for every emitted event.
type Listener func(Event)

// EventEmitter delivers events to listeners and to a buffered channel.
type EventEmitter struct {
	sessionID string
	ch        chan Event
	listeners []Listener
	closed    bool
	mu        sync.Mutex
}

// NewEventEmitter creates an EventEmitter with a buffered channel.
func NewEventEmitter(sessionID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		sessionID: sessionID,
		ch:        make(chan Event, bufferSize),
	}
}

// Subscribe registers a synchronous listener.
func (e *EventEmitter) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Emit sends an event to the listeners and the channel. Events emitted after
// Close are dropped.
func (e *EventEmitter) Emit(ev Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	ev.SessionID = e.sessionID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.ch <- ev:
	default:
		// Channel full; drop rather than block the run.
	}
	listeners := append([]Listener(nil), e.listeners...)
	e.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
