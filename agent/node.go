package agent

import "context"

// Node is one stage of the graph. Run must not modify the state it is given;
// it returns the successor state instead.
type Node interface {
	Run(ctx context.Context, s State) (State, error)
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx context.Context, s State) (State, error)

func (f NodeFunc) Run(ctx context.Context, s State) (State, error) {
	return f(ctx, s)
}
