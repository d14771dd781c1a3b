package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/martinemde/plancritic/internal/observability"
)

var tracer = otel.Tracer("plancritic/agent")

const defaultMaxSteps = 64

// Observer receives driver callbacks during a run. Callbacks run on the
// driver goroutine between stages.
type Observer interface {
	StageStarted(stage Stage, s State)
	StageFinished(stage Stage, s State, elapsed time.Duration, err error)
	Routed(from, to Stage, s State)
}

// Graph registers stage nodes and the router before compilation.
type Graph struct {
	nodes    map[Stage]Node
	entry    Stage
	router   RouterFunc
	maxSteps int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[Stage]Node)}
}

// AddNode registers node under stage, replacing any previous registration.
func (g *Graph) AddNode(stage Stage, node Node) *Graph {
	g.nodes[stage] = node
	return g
}

// SetEntryPoint sets the first stage of every run.
func (g *Graph) SetEntryPoint(stage Stage) *Graph {
	g.entry = stage
	return g
}

// SetRouter wires router after every stage.
func (g *Graph) SetRouter(router RouterFunc) *Graph {
	g.router = router
	return g
}

// SetMaxSteps bounds the number of stages one run may execute.
func (g *Graph) SetMaxSteps(n int) *Graph {
	g.maxSteps = n
	return g
}

// Compile validates the wiring and returns an executable graph.
func (g *Graph) Compile() (*Runnable, error) {
	if g.router == nil {
		return nil, errors.New("compile graph: no router set")
	}
	if g.entry == "" {
		return nil, errors.New("compile graph: no entry point set")
	}
	if _, ok := g.nodes[StageEnd]; ok {
		return nil, fmt.Errorf("compile graph: %q is reserved", StageEnd)
	}
	for stage, node := range g.nodes {
		if node == nil {
			return nil, fmt.Errorf("compile graph: nil node for stage %q", stage)
		}
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("compile graph: entry point %q has no node", g.entry)
	}

	nodes := make(map[Stage]Node, len(g.nodes))
	for k, v := range g.nodes {
		nodes[k] = v
	}
	maxSteps := g.maxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Runnable{nodes: nodes, entry: g.entry, router: g.router, maxSteps: maxSteps}, nil
}

// Runnable is a compiled graph. It holds no per-run state and may be used by
// several runs.
type Runnable struct {
	nodes    map[Stage]Node
	entry    Stage
	router   RouterFunc
	maxSteps int
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

type runConfig struct {
	observers []Observer
}

// WithObserver attaches an Observer to one run.
func WithObserver(o Observer) RunOption {
	return func(c *runConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Run executes the entry stage and then alternates router decisions and
// stage executions until the router returns StageEnd. On error the state
// reached so far is returned alongside it.
func (r *Runnable) Run(ctx context.Context, s State, opts ...RunOption) (State, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("plancritic.run_id", s.RunID),
	))
	defer span.End()

	current := r.entry
	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			return r.fail(span, s, err)
		}
		if steps >= r.maxSteps {
			return r.fail(span, s, fmt.Errorf("%w: %d stages", ErrStepLimit, r.maxSteps))
		}

		node, ok := r.nodes[current]
		if !ok {
			return r.fail(span, s, fmt.Errorf("no node registered for stage %q", current))
		}
		next, err := r.runStage(ctx, current, node, s, cfg.observers)
		if err != nil {
			return r.fail(span, s, err)
		}
		s = next

		to, err := r.router(s)
		if err != nil {
			return r.fail(span, s, err)
		}
		for _, o := range cfg.observers {
			o.Routed(current, to, s)
		}
		if to == StageEnd {
			span.SetAttributes(
				attribute.Int("plancritic.iterations", s.IterationCount),
				attribute.Bool("plancritic.complete", s.IsComplete),
			)
			span.SetStatus(codes.Ok, "success")
			return s, nil
		}
		current = to
	}
}

func (r *Runnable) runStage(ctx context.Context, stage Stage, node Node, s State, observers []Observer) (State, error) {
	ctx, span := tracer.Start(ctx, "agent.stage", trace.WithAttributes(
		attribute.String("plancritic.stage", string(stage)),
		attribute.Int("plancritic.iteration", s.IterationCount),
	))
	defer span.End()

	for _, o := range observers {
		o.StageStarted(stage, s)
	}

	start := time.Now()
	next, err := node.Run(ctx, s)
	elapsed := time.Since(start)
	durationMS := int(elapsed.Milliseconds())

	if err != nil {
		observability.RecordStageExecution(string(stage), "error", durationMS)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		for _, o := range observers {
			o.StageFinished(stage, s, elapsed, err)
		}
		return s, err
	}

	next = next.clone()
	next.StageVisits[stage]++

	observability.RecordStageExecution(string(stage), "success", durationMS)
	if stage == StageCritic && next.Verdict != VerdictNone {
		observability.RecordVerdict(string(next.Verdict))
	}
	span.SetAttributes(attribute.String("plancritic.next_action", string(next.NextAction)))
	span.SetStatus(codes.Ok, "success")
	for _, o := range observers {
		o.StageFinished(stage, next, elapsed, nil)
	}
	return next, nil
}

func (r *Runnable) fail(span trace.Span, s State, err error) (State, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return s, err
}
