package completion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTextClientComplete(t *testing.T) {
	mock := newMockAdapter("openai", "plan text")
	tc := NewTextClient(NewClient(WithProvider("openai", mock)), NoRetryPolicy(),
		WithDefaultMaxTokens(256), WithLogger(discardLogger()))

	text, err := tc.Complete(context.Background(), "Crea un plan", 0.1, "gpt-3.5-turbo-instruct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "plan text" {
		t.Errorf("expected %q, got %q", "plan text", text)
	}
	if mock.lastReq.MaxTokens == nil || *mock.lastReq.MaxTokens != 256 {
		t.Errorf("expected max tokens 256, got %v", mock.lastReq.MaxTokens)
	}
	if mock.lastReq.Model != "gpt-3.5-turbo-instruct" {
		t.Errorf("unexpected model %q", mock.lastReq.Model)
	}
	if len(mock.lastReq.Messages) != 1 || mock.lastReq.Messages[0].Text != "Crea un plan" {
		t.Errorf("unexpected messages %+v", mock.lastReq.Messages)
	}
}

func TestTextClientWrapsErrors(t *testing.T) {
	mock := newMockAdapter("openai", "")
	mock.err = &AuthenticationError{ProviderError: ProviderError{SDKError: SDKError{Message: "bad key"}, Provider: "openai", StatusCode: 401}}
	tc := NewTextClient(NewClient(WithProvider("openai", mock)), NoRetryPolicy(), WithLogger(discardLogger()))

	_, err := tc.Complete(context.Background(), "x", 0.1, "gpt-3.5-turbo-instruct")
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompletionError, got %T", err)
	}
	if ce.Provider != "openai" || ce.Model != "gpt-3.5-turbo-instruct" {
		t.Errorf("unexpected error fields: provider=%q model=%q", ce.Provider, ce.Model)
	}
	var auth *AuthenticationError
	if !errors.As(err, &auth) {
		t.Error("expected the classified cause to be reachable")
	}
}

func TestTextClientNoRetryByDefaultPolicy(t *testing.T) {
	mock := newMockAdapter("openai", "")
	mock.err = &ServerError{ProviderError: ProviderError{Retryable: true}}
	tc := NewTextClient(NewClient(WithProvider("openai", mock)), NoRetryPolicy(), WithLogger(discardLogger()))

	if _, err := tc.Complete(context.Background(), "x", 0, "m"); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Errorf("expected exactly one call, got %d", mock.calls)
	}
}

func TestTextClientRetries(t *testing.T) {
	mock := newMockAdapter("openai", "")
	mock.err = &ServerError{ProviderError: ProviderError{Retryable: true}}
	retries := 0
	policy := fastPolicy(2)
	policy.OnRetry = func(err error, attempt int, delay time.Duration) { retries++ }
	tc := NewTextClient(NewClient(WithProvider("openai", mock)), policy)

	if _, err := tc.Complete(context.Background(), "x", 0, "m"); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mock.calls)
	}
	if retries != 2 {
		t.Errorf("expected custom OnRetry to be kept, got %d notifications", retries)
	}
}

type slowAdapter struct{}

func (slowAdapter) Name() string { return "slow" }

func (slowAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	<-ctx.Done()
	return nil, &RequestTimeoutError{SDKError: SDKError{Message: "timed out", Cause: ctx.Err()}}
}

func TestTextClientRequestTimeout(t *testing.T) {
	tc := NewTextClient(NewClient(WithProvider("slow", slowAdapter{})), NoRetryPolicy(),
		WithRequestTimeout(10*time.Millisecond), WithLogger(discardLogger()))

	start := time.Now()
	_, err := tc.Complete(context.Background(), "x", 0, "m")
	var timeout *RequestTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected RequestTimeoutError, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout was not applied")
	}
}
