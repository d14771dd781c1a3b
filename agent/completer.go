package agent

import "context"

// Completer turns a prompt into generated text. Failures are returned as is;
// stages only add their own name to the error.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64, modelID string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string, temperature float64, modelID string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string, temperature float64, modelID string) (string, error) {
	return f(ctx, prompt, temperature, modelID)
}
