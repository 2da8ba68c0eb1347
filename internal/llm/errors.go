package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a provider failure for retry and abort decisions.
type ErrorKind string

const (
	// KindAuth means the credentials are wrong everywhere; the survey aborts.
	KindAuth ErrorKind = "auth"
	// KindRateLimit is retryable after backing off.
	KindRateLimit ErrorKind = "rate_limit"
	// KindTransient is retryable (timeouts, 5xx, network failures).
	KindTransient ErrorKind = "transient"
	// KindFatal fails the attempt but not the survey.
	KindFatal ErrorKind = "fatal"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given classification.
func NewError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// KindOf extracts the error kind, defaulting to fatal for unclassified
// errors and transient for context timeouts.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindFatal
}

// IsRetryable reports whether the attempt should be retried with backoff.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindTransient:
		return true
	}
	return false
}

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status >= 500:
		return KindTransient
	default:
		return KindFatal
	}
}

// StatusError wraps an HTTP failure from a provider API.
func StatusError(provider string, status int, body string) *ProviderError {
	return NewError(provider, ClassifyStatus(status),
		fmt.Errorf("API error %d: %s", status, body))
}
