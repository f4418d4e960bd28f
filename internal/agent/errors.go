package agent

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrMissingCredentials indicates an agent was built without an API key
	ErrMissingCredentials = errors.New("agent credentials missing")

	// ErrUnknownProvider indicates a provider name with no adapter
	ErrUnknownProvider = errors.New("unknown agent provider")

	// ErrEmptyCompletion indicates the provider answered with no text
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrCircuitOpen indicates the provider transport is cooling down after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Error codes carried by Error
const (
	CodeTimeout       = "timeout"
	CodeNetwork       = "network_error"
	CodeAPI           = "api_error"
	CodeEmptyResponse = "empty_response"
)

// Error is a classified provider failure
type Error struct {
	Provider   string
	Code       string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (status %d): %s", e.Provider, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps a provider call failure in an *Error
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	out := &Error{Provider: provider, Code: CodeAPI, Message: err.Error(), Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Code = CodeTimeout
		out.Message = "request timed out"
	case errors.Is(err, ErrEmptyCompletion):
		out.Code = CodeEmptyResponse
	case errors.Is(err, ErrCircuitOpen):
		out.Code = CodeNetwork
	case errors.As(err, &apiErr):
		out.StatusCode = apiErr.HTTPStatusCode
		out.Message = apiErr.Message
	case errors.As(err, &reqErr):
		out.StatusCode = reqErr.HTTPStatusCode
	case errors.As(err, &netErr):
		out.Code = CodeNetwork
		if netErr.Timeout() {
			out.Code = CodeTimeout
		}
	}
	return out
}
