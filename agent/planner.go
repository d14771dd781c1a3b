package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Planner writes a plan for the latest user request.
type Planner struct {
	completer Completer
	profile   StageProfile
	logger    *slog.Logger
}

// NewPlanner creates a Planner. A nil logger uses slog.Default().
func NewPlanner(c Completer, profile StageProfile, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{completer: c, profile: profile, logger: logger.With("stage", StagePlanner)}
}

// Run stores the trimmed plan and routes to the Executor.
func (p *Planner) Run(ctx context.Context, s State) (State, error) {
	if strings.TrimSpace(s.LastUserMessage()) == "" {
		return s, fmt.Errorf("planner: %w", ErrEmptyInput)
	}

	out, err := p.completer.Complete(ctx, PlannerPrompt(s), p.profile.Temperature, p.profile.Model)
	if err != nil {
		return s, fmt.Errorf("planner: %w", err)
	}

	next := s.clone()
	next.CurrentPlan = strings.TrimSpace(out)
	next.NextAction = ActionExecute
	p.logger.Debug("plan created", "run_id", s.RunID, "plan", Preview(next.CurrentPlan, 100))
	return next, nil
}
