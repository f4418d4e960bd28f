package service

import "errors"

var (
	// ErrInvalidRequest indicates a request that could not be decoded or is incomplete
	ErrInvalidRequest = errors.New("invalid prediction request")

	// ErrAgentUnavailable indicates an analysis request for a disabled or credential-less agent
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrEmptyPrompt indicates a custom analysis without prompt text
	ErrEmptyPrompt = errors.New("custom prompt is empty")
)
