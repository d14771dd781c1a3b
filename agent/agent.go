package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/martinemde/plancritic/internal/observability"
)

// Termination explains why a run stopped.
type Termination string

const (
	TerminationComplete      Termination = "complete"
	TerminationMaxIterations Termination = "max_iterations"
)

// TerminationOf reports why a finished state stopped.
func TerminationOf(s State) Termination {
	if s.IsComplete {
		return TerminationComplete
	}
	return TerminationMaxIterations
}

// Agent owns a compiled plan, execute and critique graph.
type Agent struct {
	config   Config
	catalog  *ToolCatalog
	runnable *Runnable
	logger   *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used by the agent and its stages.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = l
	}
}

// WithToolCatalog replaces the simulated capability catalog.
func WithToolCatalog(c *ToolCatalog) Option {
	return func(a *Agent) {
		a.catalog = c
	}
}

// New validates cfg and compiles the graph. Planner is the entry point and
// the router runs after every stage.
func New(c Completer, cfg Config, opts ...Option) (*Agent, error) {
	if c == nil {
		return nil, fmt.Errorf("agent: completer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	a := &Agent{config: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if a.catalog == nil {
		a.catalog = DefaultToolCatalog()
	}

	runnable, err := NewGraph().
		AddNode(StagePlanner, NewPlanner(c, cfg.Planner, a.logger)).
		AddNode(StageExecutor, NewExecutor(c, cfg.Executor, a.catalog, a.logger)).
		AddNode(StageCritic, NewCritic(c, cfg.Critic, a.logger)).
		SetEntryPoint(StagePlanner).
		SetRouter(NewRouter(cfg.MaxIterations)).
		SetMaxSteps(cfg.MaxSteps()).
		Compile()
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	a.runnable = runnable
	return a, nil
}

// Config returns the agent's configuration.
func (a *Agent) Config() Config { return a.config }

// Catalog returns the simulated capability catalog.
func (a *Agent) Catalog() *ToolCatalog { return a.catalog }

// Run answers one user input with a fresh state.
func (a *Agent) Run(ctx context.Context, input string, opts ...RunOption) (State, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return State{}, ErrEmptyInput
	}
	return a.RunState(ctx, NewState(input), opts...)
}

// RunState drives the graph from an existing state.
func (a *Agent) RunState(ctx context.Context, s State, opts ...RunOption) (State, error) {
	start := time.Now()
	a.logger.Info("run started", "run_id", s.RunID)

	final, err := a.runnable.Run(ctx, s, opts...)
	durationMS := int(time.Since(start).Milliseconds())
	if err != nil {
		observability.RecordRun("error", final.IterationCount, durationMS)
		a.logger.Error("run failed", "run_id", s.RunID, "error", err, "duration_ms", durationMS)
		return final, err
	}

	reason := TerminationOf(final)
	observability.RecordRun(string(reason), final.IterationCount, durationMS)
	a.logger.Info("run finished",
		"run_id", final.RunID,
		"reason", reason,
		"iterations", final.IterationCount,
		"tools", final.ToolsUsed,
		"duration_ms", durationMS,
	)
	return final, nil
}
