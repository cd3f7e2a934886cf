// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel errors for the analysis failure taxonomy. Configuration errors
// (provider, model, credential) are detected before any network call;
// transport and envelope errors abort the current analysis. None are
// retried by the core.
var (
	// ErrUnknownProvider indicates the provider id is not in the catalog.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnsupportedModel indicates the resolved model is not offered by
	// the selected provider.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrMissingCredential indicates no API key was supplied for the
	// selected provider.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrInsecureTransport indicates a non-HTTPS endpoint URL. Raised
	// before any socket activity.
	ErrInsecureTransport = errors.New("only HTTPS URLs allowed")

	// ErrNetwork indicates the HTTP request failed below the HTTP layer
	// (DNS, dial, timeout).
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponseEncoding indicates the provider returned a body
	// that is not JSON.
	ErrInvalidResponseEncoding = errors.New("invalid JSON response")

	// ErrMalformedEnvelope indicates the provider JSON envelope is missing
	// the expected reply path.
	ErrMalformedEnvelope = errors.New("malformed response envelope")

	// ErrEmptyLog indicates the caller submitted a log with no content.
	ErrEmptyLog = errors.New("log content is empty")
)

// HTTPError represents a non-2xx response from a provider. The body is
// capped at creation so large or sensitive payloads never reach logs.
type HTTPError struct {
	// Status is the HTTP status code.
	Status int

	// Body is the response body, truncated to maxErrorBody characters.
	Body string
}

const maxErrorBody = 200

// NewHTTPError builds an HTTPError, truncating the body. The cut backs up
// to a rune boundary so the kept prefix stays valid UTF-8.
func NewHTTPError(status int, body string) *HTTPError {
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return &HTTPError{Status: status, Body: body}
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// AnalysisError wraps an error with the operation that failed.
type AnalysisError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// WrapError creates a new AnalysisError with context.
func WrapError(op string, err error) *AnalysisError {
	return &AnalysisError{Op: op, Err: err}
}
