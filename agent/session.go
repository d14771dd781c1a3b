package agent

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState represents the current lifecycle state of a session.
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionProcessing SessionState = "processing"
	SessionClosed     SessionState = "closed"
)

// Result is what a caller reads from a finished run.
type Result struct {
	RunID      string        `json:"run_id"`
	Input      string        `json:"input"`
	Answer     string        `json:"answer"`
	Plan       string        `json:"plan"`
	Evaluation string        `json:"evaluation"`
	ToolsUsed  []string      `json:"tools_used"`
	Iterations int           `json:"iterations"`
	Complete   bool          `json:"complete"`
	Reason     Termination   `json:"reason"`
	Duration   time.Duration `json:"duration"`
	State      State         `json:"-"`
}

func newResult(input string, s State, d time.Duration) *Result {
	return &Result{
		RunID:      s.RunID,
		Input:      input,
		Answer:     s.ExecutionResult,
		Plan:       s.CurrentPlan,
		Evaluation: s.Evaluation,
		ToolsUsed:  append([]string(nil), s.ToolsUsed...),
		Iterations: s.IterationCount,
		Complete:   s.IsComplete,
		Reason:     TerminationOf(s),
		Duration:   d,
		State:      s,
	}
}

// Session is the conversational driver. Every Submit is an isolated run with
// fresh state; a failed run leaves nothing behind for the next one.
type Session struct {
	id      string
	agent   *Agent
	emitter *EventEmitter
	state   SessionState
	runs    int
	logger  *slog.Logger
	mu      sync.Mutex
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithListener subscribes l before the session_start event is emitted.
func WithListener(l Listener) SessionOption {
	return func(s *Session) {
		s.emitter.Subscribe(l)
	}
}

// NewSession creates an idle session around a.
func NewSession(a *Agent, opts ...SessionOption) *Session {
	id := uuid.New().String()
	s := &Session{
		id:      id,
		agent:   a,
		emitter: NewEventEmitter(id, 256),
		state:   SessionIdle,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", id)
	s.emitter.Emit(Event{Kind: EventSessionStart, Data: map[string]any{
		"max_iterations": a.Config().MaxIterations,
	}})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Runs returns how many inputs have been submitted.
func (s *Session) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Events returns the buffered event channel.
func (s *Session) Events() <-chan Event {
	return s.emitter.Events()
}

// Subscribe registers a synchronous event listener.
func (s *Session) Subscribe(l Listener) {
	s.emitter.Subscribe(l)
}

// Submit runs the agent on one user input.
func (s *Session) Submit(ctx context.Context, input string) (*Result, error) {
	input = strings.TrimSpace(input)

	s.mu.Lock()
	switch s.state {
	case SessionClosed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case SessionProcessing:
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	if input == "" {
		s.mu.Unlock()
		return nil, ErrEmptyInput
	}
	s.state = SessionProcessing
	s.runs++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.state == SessionProcessing {
			s.state = SessionIdle
		}
		s.mu.Unlock()
	}()

	start := time.Now()
	initial := NewState(input)
	s.emitter.Emit(Event{Kind: EventRunStart, RunID: initial.RunID, Data: map[string]any{
		"input": input,
	}})

	final, err := s.agent.RunState(ctx, initial, WithObserver(&sessionObserver{emitter: s.emitter, runID: initial.RunID}))
	if err != nil {
		s.emitter.Emit(Event{Kind: EventRunError, RunID: initial.RunID, Data: map[string]any{
			"error": err.Error(),
		}})
		return nil, err
	}

	result := newResult(input, final, time.Since(start))
	s.emitter.Emit(Event{Kind: EventRunEnd, RunID: final.RunID, Data: map[string]any{
		"iterations": result.Iterations,
		"complete":   result.Complete,
		"reason":     string(result.Reason),
		"tools_used": result.ToolsUsed,
	}})
	return result, nil
}

// Close terminates the session. Safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = SessionClosed
	runs := s.runs
	s.mu.Unlock()

	s.emitter.Emit(Event{Kind: EventSessionEnd, Data: map[string]any{
		"runs": runs,
	}})
	s.emitter.Close()
	s.logger.Debug("session closed", "runs", runs)
}

// sessionObserver turns driver callbacks into session events.
type sessionObserver struct {
	emitter *EventEmitter
	runID   string
}

func (o *sessionObserver) StageStarted(stage Stage, st State) {
	o.emitter.Emit(Event{Kind: EventStageStart, RunID: o.runID, Stage: stage, Data: map[string]any{
		"iteration": st.IterationCount,
	}})
}

func (o *sessionObserver) StageFinished(stage Stage, st State, elapsed time.Duration, err error) {
	data := map[string]any{"elapsed": elapsed}
	if err != nil {
		data["error"] = err.Error()
	} else {
		switch stage {
		case StagePlanner:
			data["output"] = st.CurrentPlan
		case StageExecutor:
			data["output"] = st.ExecutionResult
			data["tools_used"] = append([]string(nil), st.ToolsUsed...)
		case StageCritic:
			data["output"] = st.Evaluation
			data["verdict"] = string(st.Verdict)
			data["iteration"] = st.IterationCount
		}
	}
	o.emitter.Emit(Event{Kind: EventStageEnd, RunID: o.runID, Stage: stage, Data: data})
}

func (o *sessionObserver) Routed(from, to Stage, st State) {
	o.emitter.Emit(Event{Kind: EventRoute, RunID: o.runID, Stage: from, Data: map[string]any{
		"to":          string(to),
		"next_action": string(st.NextAction),
	}})
}
