package completion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type fakeCompletions struct {
	params openai.CompletionNewParams
	out    *openai.Completion
	err    error
	calls  int
}

func (f *fakeCompletions) New(ctx context.Context, body openai.CompletionNewParams, opts ...option.RequestOption) (*openai.Completion, error) {
	f.calls++
	f.params = body
	return f.out, f.err
}

type fakeChat struct {
	params openai.ChatCompletionNewParams
	out    *openai.ChatCompletion
	err    error
	calls  int
}

func (f *fakeChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	f.params = body
	return f.out, f.err
}

func TestOpenAIAdapterInstructUsesLegacyEndpoint(t *testing.T) {
	completions := &fakeCompletions{out: &openai.Completion{
		ID:      "cmpl-1",
		Model:   "gpt-3.5-turbo-instruct",
		Choices: []openai.CompletionChoice{{Text: "1. Investigar", FinishReason: "stop"}},
		Usage:   openai.CompletionUsage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16},
	}}
	chat := &fakeChat{}
	adapter := newOpenAIAdapter(completions, chat)

	resp, err := adapter.Complete(context.Background(), PromptRequest("gpt-3.5-turbo-instruct", "Crea un plan", 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completions.calls != 1 || chat.calls != 0 {
		t.Fatalf("expected legacy endpoint only, got completions=%d chat=%d", completions.calls, chat.calls)
	}
	if resp.Text() != "1. Investigar" {
		t.Errorf("unexpected text %q", resp.Text())
	}
	if resp.FinishReason.Reason != "stop" {
		t.Errorf("unexpected finish reason %q", resp.FinishReason.Reason)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("expected 16 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if got := completions.params.Prompt.OfString.Value; got != "Crea un plan" {
		t.Errorf("unexpected prompt %q", got)
	}
	if got := completions.params.Temperature.Value; got != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", got)
	}
	if got := completions.params.MaxTokens.Value; got != 1024 {
		t.Errorf("expected default max tokens 1024, got %d", got)
	}
}

func TestOpenAIAdapterChatModel(t *testing.T) {
	completions := &fakeCompletions{}
	chat := &fakeChat{out: &openai.ChatCompletion{
		ID:    "chatcmpl-1",
		Model: "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "Resultado"},
			FinishReason: "length",
		}},
	}}
	adapter := newOpenAIAdapter(completions, chat, WithOpenAIMaxTokens(64))

	req := PromptRequest("4o-mini", "Ejecuta", 0.7)
	req.Messages = append([]Message{SystemMessage("sys")}, req.Messages...)
	resp, err := adapter.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.calls != 1 || completions.calls != 0 {
		t.Fatalf("expected chat endpoint only, got completions=%d chat=%d", completions.calls, chat.calls)
	}
	if resp.Text() != "Resultado" {
		t.Errorf("unexpected text %q", resp.Text())
	}
	if resp.FinishReason.Reason != "length" {
		t.Errorf("unexpected finish reason %q", resp.FinishReason.Reason)
	}
	if string(chat.params.Model) != "gpt-4o-mini" {
		t.Errorf("expected alias to resolve, got %q", chat.params.Model)
	}
	if len(chat.params.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(chat.params.Messages))
	}
	if chat.params.MaxTokens.Value != 64 {
		t.Errorf("expected max tokens 64, got %d", chat.params.MaxTokens.Value)
	}
}

func TestOpenAIAdapterNoChoices(t *testing.T) {
	completions := &fakeCompletions{out: &openai.Completion{}}
	adapter := newOpenAIAdapter(completions, &fakeChat{})

	_, err := adapter.Complete(context.Background(), PromptRequest("instruct", "x", 0))
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
}

func TestOpenAIAdapterAPIErrors(t *testing.T) {
	newAPIError := func(status int, code string, header http.Header) *openai.Error {
		return &openai.Error{
			StatusCode: status,
			Code:       code,
			Request:    httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/completions", nil),
			Response:   &http.Response{StatusCode: status, Header: header},
		}
	}

	t.Run("rate limit with retry-after", func(t *testing.T) {
		completions := &fakeCompletions{err: newAPIError(429, "rate_limit_exceeded", http.Header{"Retry-After": []string{"2"}})}
		_, err := newOpenAIAdapter(completions, &fakeChat{}).Complete(context.Background(), PromptRequest("instruct", "x", 0))

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("expected RateLimitError, got %T", err)
		}
		if rl.RetryAfter == nil || *rl.RetryAfter != 2 {
			t.Errorf("expected Retry-After 2, got %v", rl.RetryAfter)
		}
		var apiErr *openai.Error
		if !errors.As(err, &apiErr) {
			t.Error("expected the SDK error to stay reachable")
		}
	})

	t.Run("insufficient quota", func(t *testing.T) {
		completions := &fakeCompletions{err: newAPIError(429, "insufficient_quota", http.Header{})}
		_, err := newOpenAIAdapter(completions, &fakeChat{}).Complete(context.Background(), PromptRequest("instruct", "x", 0))
		var q *QuotaExceededError
		if !errors.As(err, &q) {
			t.Fatalf("expected QuotaExceededError, got %T", err)
		}
		if IsRetryable(err) {
			t.Error("quota errors must not be retryable")
		}
	})

	t.Run("authentication", func(t *testing.T) {
		chat := &fakeChat{err: newAPIError(401, "invalid_api_key", http.Header{})}
		_, err := newOpenAIAdapter(&fakeCompletions{}, chat).Complete(context.Background(), PromptRequest("gpt-4o", "x", 0))
		var auth *AuthenticationError
		if !errors.As(err, &auth) {
			t.Fatalf("expected AuthenticationError, got %T", err)
		}
	})
}

func TestOpenAIAdapterTransportErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"cancelled", context.Canceled, isType[*AbortError]},
		{"deadline", context.DeadlineExceeded, isType[*RequestTimeoutError]},
		{"network", errors.New("dial tcp: i/o timeout"), isType[*NetworkError]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := &fakeCompletions{err: tt.err}
			_, err := newOpenAIAdapter(completions, &fakeChat{}).Complete(context.Background(), PromptRequest("instruct", "x", 0))
			if !tt.check(err) {
				t.Errorf("unexpected type %T", err)
			}
		})
	}
}

func TestNewOpenAIAdapterRequiresKey(t *testing.T) {
	_, err := NewOpenAIAdapter("  ", nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if parseRetryAfter(http.Header{}) != nil {
		t.Error("expected nil for missing header")
	}
	if parseRetryAfter(http.Header{"Retry-After": []string{"soon"}}) != nil {
		t.Error("expected nil for non-numeric header")
	}
	if v := parseRetryAfter(http.Header{"Retry-After": []string{"1.5"}}); v == nil || *v != 1.5 {
		t.Errorf("expected 1.5, got %v", v)
	}
}

func TestNormalizeFinishReason(t *testing.T) {
	tests := map[string]string{
		"stop":           "stop",
		"end_turn":       "stop",
		"stop_sequence":  "stop",
		"length":         "length",
		"max_tokens":     "length",
		"content_filter": "content_filter",
		"refusal":        "content_filter",
		"tool_use":       "other",
		"":               "other",
	}
	for raw, want := range tests {
		if got := normalizeFinishReason(raw); got != want {
			t.Errorf("normalizeFinishReason(%q) = %q, want %q", raw, got, want)
		}
	}
}
