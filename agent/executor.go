package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Executor carries out the current plan and records which simulated
// capabilities the plan mentions.
type Executor struct {
	completer Completer
	profile   StageProfile
	catalog   *ToolCatalog
	logger    *slog.Logger
}

// NewExecutor creates an Executor. A nil catalog uses DefaultToolCatalog and a
// nil logger uses slog.Default().
func NewExecutor(c Completer, profile StageProfile, catalog *ToolCatalog, logger *slog.Logger) *Executor {
	if catalog == nil {
		catalog = DefaultToolCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{completer: c, profile: profile, catalog: catalog, logger: logger.With("stage", StageExecutor)}
}

// Run stores the trimmed result, appends detected tools and routes to the
// Critic.
func (e *Executor) Run(ctx context.Context, s State) (State, error) {
	out, err := e.completer.Complete(ctx, ExecutorPrompt(s, e.catalog.Capabilities()), e.profile.Temperature, e.profile.Model)
	if err != nil {
		return s, fmt.Errorf("executor: %w", err)
	}

	next := s.clone()
	next.ExecutionResult = strings.TrimSpace(out)
	detected := e.catalog.Detect(s.CurrentPlan)
	next.ToolsUsed = append(next.ToolsUsed, detected...)
	next.NextAction = ActionCritique
	e.logger.Debug("plan executed", "run_id", s.RunID, "tools", detected, "result", Preview(next.ExecutionResult, 100))
	return next, nil
}
