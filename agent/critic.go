package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Critic grades the execution result and decides where the loop goes next.
type Critic struct {
	completer Completer
	profile   StageProfile
	logger    *slog.Logger
}

// NewCritic creates a Critic. A nil logger uses slog.Default().
func NewCritic(c Completer, profile StageProfile, logger *slog.Logger) *Critic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Critic{completer: c, profile: profile, logger: logger.With("stage", StageCritic)}
}

// Run stores the evaluation, classifies it and counts one iteration.
func (c *Critic) Run(ctx context.Context, s State) (State, error) {
	out, err := c.completer.Complete(ctx, CriticPrompt(s), c.profile.Temperature, c.profile.Model)
	if err != nil {
		return s, fmt.Errorf("critic: %w", err)
	}

	next := s.clone()
	next.Evaluation = strings.TrimSpace(out)
	next.Verdict = ClassifyVerdict(next.Evaluation)
	next.NextAction = next.Verdict.Action()
	if next.Verdict == VerdictSatisfactory {
		next.IsComplete = true
	}
	next.IterationCount++
	c.logger.Debug("result evaluated", "run_id", s.RunID, "verdict", next.Verdict, "iteration", next.IterationCount)
	return next, nil
}
