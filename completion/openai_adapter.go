package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAICompletions is the subset of the openai-go legacy completions service
// used by the adapter.
type openAICompletions interface {
	New(ctx context.Context, body openai.CompletionNewParams, opts ...option.RequestOption) (*openai.Completion, error)
}

// openAIChat is the subset of the openai-go chat completions service used by
// the adapter.
type openAIChat interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIAdapter talks to the OpenAI API through openai-go. Instruct models are
// served by the legacy completions endpoint; everything else goes to chat
// completions.
type OpenAIAdapter struct {
	completions openAICompletions
	chat        openAIChat
	model       string
	maxTokens   int
}

// OpenAIAdapterOption configures an OpenAIAdapter.
type OpenAIAdapterOption func(*OpenAIAdapter)

// WithOpenAIModel sets the model used when a request does not name one.
func WithOpenAIModel(model string) OpenAIAdapterOption {
	return func(a *OpenAIAdapter) {
		a.model = ResolveModelID(model)
	}
}

// WithOpenAIMaxTokens sets the default completion length.
func WithOpenAIMaxTokens(n int) OpenAIAdapterOption {
	return func(a *OpenAIAdapter) {
		a.maxTokens = n
	}
}

// NewOpenAIAdapter builds an adapter backed by the official openai-go client.
// Extra request options (base URL, HTTP client) can be passed through.
func NewOpenAIAdapter(apiKey string, opts []OpenAIAdapterOption, reqOpts ...option.RequestOption) (*OpenAIAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{SDKError: SDKError{Message: "openai adapter requires an API key"}}
	}
	reqOpts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, reqOpts...)
	client := openai.NewClient(reqOpts...)
	return newOpenAIAdapter(&client.Completions, &client.Chat.Completions, opts...), nil
}

func newOpenAIAdapter(completions openAICompletions, chat openAIChat, opts ...OpenAIAdapterOption) *OpenAIAdapter {
	a := &OpenAIAdapter{
		completions: completions,
		chat:        chat,
		model:       "gpt-3.5-turbo-instruct",
		maxTokens:   1024,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Complete sends the request to the endpoint matching the model's API family.
func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	model := ResolveModelID(req.Model)
	if model == "" {
		model = a.model
	}
	maxTokens := a.maxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	start := time.Now()
	var (
		resp *Response
		err  error
	)
	if info := GetModelInfo(model); info != nil && info.API == APICompletions {
		resp, err = a.completeLegacy(ctx, req, model, maxTokens)
	} else {
		resp, err = a.completeChat(ctx, req, model, maxTokens)
	}
	if err != nil {
		return nil, translateOpenAIError(err)
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

func (a *OpenAIAdapter) completeLegacy(ctx context.Context, req Request, model string, maxTokens int) (*Response, error) {
	prompt := req.PromptText()
	if sys := req.SystemPrompt(); sys != "" {
		prompt = sys + "\n\n" + prompt
	}
	params := openai.CompletionNewParams{
		Model:     openai.CompletionNewParamsModel(model),
		Prompt:    openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	out, err := a.completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ProviderError{SDKError: SDKError{Message: "openai returned no choices"}, Provider: "openai"}
	}
	choice := out.Choices[0]
	return &Response{
		ID:           out.ID,
		Model:        out.Model,
		Provider:     "openai",
		Message:      AssistantMessage(choice.Text),
		FinishReason: FinishReason{Reason: normalizeFinishReason(string(choice.FinishReason)), Raw: string(choice.FinishReason)},
		Usage: Usage{
			InputTokens:  int(out.Usage.PromptTokens),
			OutputTokens: int(out.Usage.CompletionTokens),
			TotalTokens:  int(out.Usage.TotalTokens),
		},
	}, nil
}

func (a *OpenAIAdapter) completeChat(ctx context.Context, req Request, model string, maxTokens int) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Text))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Text))
		default:
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		Messages:  messages,
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	out, err := a.chat.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ProviderError{SDKError: SDKError{Message: "openai returned no choices"}, Provider: "openai"}
	}
	choice := out.Choices[0]
	return &Response{
		ID:           out.ID,
		Model:        out.Model,
		Provider:     "openai",
		Message:      AssistantMessage(choice.Message.Content),
		FinishReason: FinishReason{Reason: normalizeFinishReason(string(choice.FinishReason)), Raw: string(choice.FinishReason)},
		Usage: Usage{
			InputTokens:  int(out.Usage.PromptTokens),
			OutputTokens: int(out.Usage.CompletionTokens),
			TotalTokens:  int(out.Usage.TotalTokens),
		},
	}, nil
}

// translateOpenAIError maps openai-go API errors onto the taxonomy by status
// code. Transport failures become NetworkError.
func translateOpenAIError(err error) error {
	var own *ProviderError
	if errors.As(err, &own) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		var retryAfter *float64
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header)
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("openai request failed with status %d", apiErr.StatusCode)
		}
		return wrapCause(ErrorFromStatusCode(apiErr.StatusCode, msg, "openai", apiErr.Code, retryAfter), err)
	}
	return classifyTransportError("openai", err)
}

// parseRetryAfter reads a Retry-After header expressed in seconds.
func parseRetryAfter(h http.Header) *float64 {
	v := h.Get("Retry-After")
	if v == "" {
		return nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &secs
}

// wrapCause attaches the SDK error as the cause of a classified error.
func wrapCause(classified, cause error) error {
	switch e := classified.(type) {
	case *InvalidRequestError:
		e.Cause = cause
	case *AuthenticationError:
		e.Cause = cause
	case *QuotaExceededError:
		e.Cause = cause
	case *AccessDeniedError:
		e.Cause = cause
	case *NotFoundError:
		e.Cause = cause
	case *RequestTimeoutError:
		e.Cause = cause
	case *ContextLengthError:
		e.Cause = cause
	case *RateLimitError:
		e.Cause = cause
	case *ServerError:
		e.Cause = cause
	case *ProviderError:
		e.Cause = cause
	}
	return classified
}

// classifyTransportError handles errors that never reached the provider.
func classifyTransportError(provider string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return &AbortError{SDKError: SDKError{Message: "request cancelled", Cause: err}}
	case errors.Is(err, context.DeadlineExceeded):
		return &RequestTimeoutError{SDKError: SDKError{Message: "request timed out", Cause: err}}
	default:
		return &NetworkError{SDKError: SDKError{Message: provider + " request failed", Cause: err}}
	}
}

func normalizeFinishReason(raw string) string {
	switch raw {
	case "stop", "end_turn", "stop_sequence":
		return "stop"
	case "length", "max_tokens":
		return "length"
	case "content_filter", "refusal":
		return "content_filter"
	default:
		return "other"
	}
}
