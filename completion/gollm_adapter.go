package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmAdapter wraps a gollm.LLM instance and implements ProviderAdapter for
// chat-style models of any provider gollm supports.
type GollmAdapter struct {
	provider string
	model    string
	llm      gollm.LLM

	// gollm applies per-request settings by mutating the shared LLM, so calls
	// are serialized.
	mu sync.Mutex
}

// GollmAdapterOption configures a GollmAdapter.
type GollmAdapterOption func(*gollmAdapterConfig)

type gollmAdapterConfig struct {
	model       string
	maxTokens   int
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithGollmModel sets the default model for the adapter.
func WithGollmModel(model string) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.model = model
	}
}

// WithGollmMaxTokens sets the default max tokens.
func WithGollmMaxTokens(n int) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.maxTokens = n
	}
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.extraOpts = append(c.extraOpts, opts...)
	}
}

// NewGollmAdapter creates a new GollmAdapter for the given provider.
// If apiKey is empty, gollm will attempt to read it from environment variables.
func NewGollmAdapter(provider string, apiKey string, opts ...GollmAdapterOption) (*GollmAdapter, error) {
	cfg := &gollmAdapterConfig{
		maxTokens:   1024,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := ResolveModelID(cfg.model)
	if model == "" {
		if info := GetLatestModel(provider, ""); info != nil {
			model = info.ID
		} else {
			model = "gpt-4o-mini"
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries belong to RetryPolicy
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmAdapter{
		provider: provider,
		model:    model,
		llm:      llm,
	}, nil
}

// NewGollmAdapterFromLLM wraps an existing gollm.LLM instance.
func NewGollmAdapterFromLLM(provider, model string, llm gollm.LLM) *GollmAdapter {
	return &GollmAdapter{
		provider: provider,
		model:    model,
		llm:      llm,
	}
}

// Name returns the provider identifier.
func (a *GollmAdapter) Name() string {
	return a.provider
}

// Complete sends a blocking request and returns the full response.
func (a *GollmAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.PromptText()) == "" {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			SDKError: SDKError{Message: "gollm request requires a non-empty prompt"},
			Provider: a.provider,
		}}
	}
	prompt := buildGollmPrompt(req)

	a.mu.Lock()
	defer a.mu.Unlock()

	if req.Model != "" {
		a.llm.SetOption("model", ResolveModelID(req.Model))
	}
	if req.Temperature != nil {
		a.llm.SetOption("temperature", *req.Temperature)
	}
	if req.MaxTokens != nil {
		a.llm.SetOption("max_tokens", *req.MaxTokens)
	}

	start := time.Now()
	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, a.translateError(err)
	}

	model := req.Model
	if model == "" {
		model = a.model
	}
	input := estimateTokens(req.SystemPrompt() + req.PromptText())
	output := estimateTokens(text)
	return &Response{
		ID:           "resp_" + uuid.New().String()[:8],
		Model:        model,
		Provider:     a.provider,
		Message:      AssistantMessage(text),
		FinishReason: FinishReason{Reason: "stop", Raw: "stop"},
		Usage:        Usage{InputTokens: input, OutputTokens: output, TotalTokens: input + output},
		Latency:      time.Since(start),
	}, nil
}

// buildGollmPrompt converts a Request into a gollm Prompt. gollm takes a
// single text body plus an optional system prompt.
func buildGollmPrompt(req Request) *gollm.Prompt {
	var promptOpts []gollm.PromptOption
	if sys := strings.TrimSpace(req.SystemPrompt()); sys != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(sys, gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens != nil {
		promptOpts = append(promptOpts, gollm.WithMaxLength(*req.MaxTokens))
	}
	return gollm.NewPrompt(req.PromptText(), promptOpts...)
}

// translateError converts a gollm error into the error taxonomy. gollm only
// surfaces provider failures as text, so classification is by message.
func (a *GollmAdapter) translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	pe := ProviderError{SDKError: SDKError{Message: msg, Cause: err}, Provider: a.provider}

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "invalid key"):
		pe.StatusCode = 401
		return &AuthenticationError{ProviderError: pe}
	case strings.Contains(lower, "403") || strings.Contains(lower, "forbidden"):
		pe.StatusCode = 403
		return &AccessDeniedError{ProviderError: pe}
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found"):
		pe.StatusCode = 404
		return &NotFoundError{ProviderError: pe}
	case strings.Contains(lower, "quota"):
		pe.StatusCode = 429
		return &QuotaExceededError{ProviderError: pe}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		pe.StatusCode = 429
		pe.Retryable = true
		return &RateLimitError{ProviderError: pe}
	case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
		pe.StatusCode = 413
		return &ContextLengthError{ProviderError: pe}
	case strings.Contains(lower, "500") || strings.Contains(lower, "internal server") || strings.Contains(lower, "overloaded"):
		pe.StatusCode = 500
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return &RequestTimeoutError{SDKError: SDKError{Message: msg, Cause: err}}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return &NetworkError{SDKError: SDKError{Message: msg, Cause: err}}
	case strings.Contains(lower, "content filter") || strings.Contains(lower, "safety"):
		return &ContentFilterError{ProviderError: pe}
	default:
		pe.Retryable = true
		return &pe
	}
}
