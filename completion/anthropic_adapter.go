package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMessages is the subset of the anthropic-sdk-go messages service
// used by the adapter.
type anthropicMessages interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicAdapter talks to the Anthropic Messages API.
type AnthropicAdapter struct {
	messages  anthropicMessages
	model     string
	maxTokens int
}

// NewAnthropicAdapter builds an adapter backed by the official Anthropic SDK.
func NewAnthropicAdapter(apiKey, model string, maxTokens int, reqOpts ...option.RequestOption) (*AnthropicAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{SDKError: SDKError{Message: "anthropic adapter requires an API key"}}
	}
	reqOpts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, reqOpts...)
	client := anthropic.NewClient(reqOpts...)
	return newAnthropicAdapter(&client.Messages, model, maxTokens), nil
}

func newAnthropicAdapter(messages anthropicMessages, model string, maxTokens int) *AnthropicAdapter {
	model = ResolveModelID(model)
	if model == "" {
		if info := GetLatestModel("anthropic", APIMessages); info != nil {
			model = info.ID
		}
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicAdapter{messages: messages, model: model, maxTokens: maxTokens}
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Complete sends the request as a single Messages API call.
func (a *AnthropicAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	model := ResolveModelID(req.Model)
	if model == "" {
		model = a.model
	}
	maxTokens := a.maxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	var msgs []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		case RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		}
	}
	if len(msgs) == 0 {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			SDKError: SDKError{Message: "anthropic request requires at least one user message"},
			Provider: "anthropic",
		}}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if sys := req.SystemPrompt(); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	start := time.Now()
	out, err := a.messages.New(ctx, params)
	if err != nil {
		return nil, translateAnthropicError(err)
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	stop := string(out.StopReason)
	input, output := int(out.Usage.InputTokens), int(out.Usage.OutputTokens)
	return &Response{
		ID:           out.ID,
		Model:        string(out.Model),
		Provider:     "anthropic",
		Message:      AssistantMessage(sb.String()),
		FinishReason: FinishReason{Reason: normalizeFinishReason(stop), Raw: stop},
		Usage:        Usage{InputTokens: input, OutputTokens: output, TotalTokens: input + output},
		Latency:      time.Since(start),
	}, nil
}

func translateAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var retryAfter *float64
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header)
		}
		msg := fmt.Sprintf("anthropic request failed with status %d", apiErr.StatusCode)
		return wrapCause(ErrorFromStatusCode(apiErr.StatusCode, msg, "anthropic", "", retryAfter), err)
	}
	return classifyTransportError("anthropic", err)
}
