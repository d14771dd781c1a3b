package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction is returned by Route when the state carries an action
	// outside the closed set.
	ErrUnknownAction = errors.New("unknown next action")

	// ErrStepLimit is returned when a run executes more stages than its
	// configured ceiling allows.
	ErrStepLimit = errors.New("step limit exceeded")

	ErrSessionClosed = errors.New("session is closed")
	ErrSessionBusy   = errors.New("session is processing another input")
	ErrEmptyInput    = errors.New("empty user input")
)

// RouterFunc decides the stage that runs after the current state.
type RouterFunc func(s State) (Stage, error)

// Route picks the next stage. The iteration cap is checked first, then the
// completion latch, then the action requested by the last stage.
func Route(s State, maxIterations int) (Stage, error) {
	if s.IterationCount >= maxIterations {
		return StageEnd, nil
	}
	if s.IsComplete {
		return StageEnd, nil
	}
	switch s.NextAction {
	case ActionPlan:
		return StagePlanner, nil
	case ActionExecute:
		return StageExecutor, nil
	case ActionCritique:
		return StageCritic, nil
	case ActionComplete:
		return StageEnd, nil
	default:
		return StageEnd, fmt.Errorf("%w: %q", ErrUnknownAction, s.NextAction)
	}
}

// NewRouter binds Route to a fixed iteration cap.
func NewRouter(maxIterations int) RouterFunc {
	return func(s State) (Stage, error) {
		return Route(s, maxIterations)
	}
}
