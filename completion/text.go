package completion

import (
	"context"
	"log/slog"
	"time"
)

// TextClient is the prompt-in, text-out boundary used by the agent stages.
// It turns every failure into a *CompletionError.
type TextClient struct {
	client    *Client
	retry     RetryPolicy
	timeout   time.Duration
	maxTokens int
	logger    *slog.Logger
}

// TextClientOption configures a TextClient.
type TextClientOption func(*TextClient)

// WithRequestTimeout bounds each attempt. Zero means no per-call bound.
func WithRequestTimeout(d time.Duration) TextClientOption {
	return func(t *TextClient) {
		t.timeout = d
	}
}

// WithDefaultMaxTokens sets max_tokens on every request.
func WithDefaultMaxTokens(n int) TextClientOption {
	return func(t *TextClient) {
		t.maxTokens = n
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *slog.Logger) TextClientOption {
	return func(t *TextClient) {
		t.logger = l
	}
}

// NewTextClient wraps client with the given retry policy.
func NewTextClient(client *Client, retry RetryPolicy, opts ...TextClientOption) *TextClient {
	t := &TextClient{
		client: client,
		retry:  retry,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.retry.OnRetry == nil {
		t.retry.OnRetry = func(err error, attempt int, delay time.Duration) {
			t.logger.Warn("retrying completion", "attempt", attempt, "delay", delay, "error", err)
		}
	}
	return t
}

// Complete sends prompt to modelID at the given temperature and returns the
// generated text.
func (t *TextClient) Complete(ctx context.Context, prompt string, temperature float64, modelID string) (string, error) {
	req := PromptRequest(modelID, prompt, temperature)
	if t.maxTokens > 0 {
		n := t.maxTokens
		req.MaxTokens = &n
	}

	resp, err := Retry(ctx, t.retry, func(ctx context.Context) (*Response, error) {
		if t.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}
		return t.client.Complete(ctx, req)
	})
	if err != nil {
		provider := req.Provider
		if info := GetModelInfo(modelID); info != nil && provider == "" {
			provider = info.Provider
		}
		return "", NewCompletionError(provider, modelID, err)
	}
	return resp.Text(), nil
}
