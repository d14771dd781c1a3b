package agent

import "fmt"

// DefaultModel is used by every stage unless configured otherwise.
const DefaultModel = "gpt-3.5-turbo-instruct"

// DefaultMaxIterations caps Critic visits per run.
const DefaultMaxIterations = 5

// StageProfile holds the completion settings for one stage.
type StageProfile struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Config configures an Agent.
type Config struct {
	MaxIterations int          `json:"max_iterations"`
	Planner       StageProfile `json:"planner"`
	Executor      StageProfile `json:"executor"`
	Critic        StageProfile `json:"critic"`
}

// DefaultConfig returns the stock settings: low randomness for planning and
// critique, higher for execution.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		Planner:       StageProfile{Model: DefaultModel, Temperature: 0.1},
		Executor:      StageProfile{Model: DefaultModel, Temperature: 0.7},
		Critic:        StageProfile{Model: DefaultModel, Temperature: 0.1},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	}
	for _, p := range []struct {
		stage   Stage
		profile StageProfile
	}{{StagePlanner, c.Planner}, {StageExecutor, c.Executor}, {StageCritic, c.Critic}} {
		if p.profile.Model == "" {
			return fmt.Errorf("%s: model is required", p.stage)
		}
		if p.profile.Temperature < 0 || p.profile.Temperature > 2 {
			return fmt.Errorf("%s: temperature %.2f out of range [0, 2]", p.stage, p.profile.Temperature)
		}
	}
	return nil
}

// MaxSteps bounds how many stages a run may execute: one planner and one
// executor per iteration, one critic per iteration, plus slack.
func (c Config) MaxSteps() int {
	return 3*c.MaxIterations + 3
}
