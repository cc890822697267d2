package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// AssessmentProvider is the capability boundary around the external model.
// Implementations perform no retries; retry policy belongs to the caller.
type AssessmentProvider interface {
	// AssessText sends a prompt plus already extracted document text.
	AssessText(ctx context.Context, prompt, text string) (string, error)
	// AssessDocument hands the raw document to a provider that can ingest it natively.
	AssessDocument(ctx context.Context, prompt string, data []byte, mediaType string) (string, error)
}

// ErrorKind separates failures worth retrying from those that are not.
type ErrorKind string

const (
	Transient ErrorKind = "transient"
	Permanent ErrorKind = "permanent"
)

// ProviderError is the only error type provider implementations return.
type ProviderError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider error (%s, status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether the call may succeed when repeated.
func (e *ProviderError) Temporary() bool { return e.Kind == Transient }

// KindForStatus classifies an HTTP status code.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return Transient
	case status >= 500:
		return Transient
	default:
		return Permanent
	}
}

// NewStatusError builds a ProviderError from a non-2xx response.
func NewStatusError(provider string, status int, body []byte) *ProviderError {
	return &ProviderError{
		Kind:       KindForStatus(status),
		Provider:   provider,
		StatusCode: status,
		Err:        fmt.Errorf("non-2xx status: %d: %s", status, truncate(string(body), 512)),
	}
}

// NewTransportError classifies an error raised before any response arrived.
// Timeouts and network errors are transient; caller cancellation is permanent.
func NewTransportError(provider string, err error) *ProviderError {
	kind := Permanent
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = Permanent
	case errors.Is(err, context.DeadlineExceeded):
		kind = Transient
	case errors.As(err, &netErr):
		kind = Transient
	}
	return &ProviderError{Kind: kind, Provider: provider, Err: err}
}

// IsTransient reports whether err is a ProviderError worth retrying.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == Transient
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
