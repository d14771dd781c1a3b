package completion

import (
	"context"
	"errors"
	"fmt"
)

// SDKError is the base error type for all completion errors.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by an LLM provider.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
	Retryable  bool
	RetryAfter *float64
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }
type ContentFilterError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }
type QuotaExceededError struct{ ProviderError }

// Non-provider errors.

type RequestTimeoutError struct{ SDKError }
type AbortError struct{ SDKError }
type NetworkError struct{ SDKError }
type ConfigurationError struct{ SDKError }

// CompletionError is the single error kind that leaves TextClient. It records
// which provider and model were called and wraps the classified cause, so
// callers can still reach the concrete type with errors.As.
type CompletionError struct {
	SDKError
	Provider string
	Model    string
}

func (e *CompletionError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("completion failed (model=%s): %v", e.Model, e.Cause)
	}
	return fmt.Sprintf("completion failed (provider=%s, model=%s): %v", e.Provider, e.Model, e.Cause)
}

// NewCompletionError wraps cause unless it already is a *CompletionError.
func NewCompletionError(provider, model string, cause error) error {
	if cause == nil {
		return nil
	}
	var ce *CompletionError
	if errors.As(cause, &ce) {
		return cause
	}
	return &CompletionError{
		SDKError: SDKError{Message: "completion failed", Cause: cause},
		Provider: provider,
		Model:    model,
	}
}

// ErrorFromStatusCode maps an HTTP status code to the appropriate error type.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string, retryAfter *float64) error {
	pe := ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   provider,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		RetryAfter: retryAfter,
	}

	switch statusCode {
	case 400, 422:
		return &InvalidRequestError{ProviderError: pe}
	case 401:
		return &AuthenticationError{ProviderError: pe}
	case 402:
		return &QuotaExceededError{ProviderError: pe}
	case 403:
		return &AccessDeniedError{ProviderError: pe}
	case 404:
		return &NotFoundError{ProviderError: pe}
	case 408:
		return &RequestTimeoutError{SDKError: SDKError{Message: message}}
	case 413:
		return &ContextLengthError{ProviderError: pe}
	case 429:
		pe.Retryable = true
		if errorCode == "insufficient_quota" {
			pe.Retryable = false
			return &QuotaExceededError{ProviderError: pe}
		}
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504, 529:
		pe.Retryable = true
		return &ServerError{ProviderError: pe}
	default:
		// Unknown errors default to retryable.
		pe.Retryable = true
		return &pe
	}
}

// IsRetryable reports whether err is safe to retry. Wrapped errors are
// inspected through their chain.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var (
		authErr    *AuthenticationError
		deniedErr  *AccessDeniedError
		notFound   *NotFoundError
		invalidReq *InvalidRequestError
		ctxLen     *ContextLengthError
		quota      *QuotaExceededError
		filtered   *ContentFilterError
		cfgErr     *ConfigurationError
		abortErr   *AbortError
		rateErr    *RateLimitError
		serverErr  *ServerError
		netErr     *NetworkError
		timeoutErr *RequestTimeoutError
		provErr    *ProviderError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &deniedErr), errors.As(err, &notFound),
		errors.As(err, &invalidReq), errors.As(err, &ctxLen), errors.As(err, &quota),
		errors.As(err, &filtered), errors.As(err, &cfgErr), errors.As(err, &abortErr):
		return false
	case errors.As(err, &rateErr), errors.As(err, &serverErr),
		errors.As(err, &netErr), errors.As(err, &timeoutErr):
		return true
	case errors.As(err, &provErr):
		return provErr.Retryable
	default:
		// Unknown errors default to retryable.
		return true
	}
}
