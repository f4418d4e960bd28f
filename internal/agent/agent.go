// Package agent adapts external AI completion providers behind one interface.
package agent

import (
	"context"
)

// Supported providers, in consensus dispatch order
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderGrok   = "grok"
)

// Providers lists every supported provider in dispatch order
var Providers = []string{ProviderClaude, ProviderOpenAI, ProviderGemini, ProviderGrok}

// Request parameters shared by every provider
const (
	DefaultMaxTokens   = 1000
	AnalysisMaxTokens  = 2000
	DefaultTemperature = 0.7
	GrokBaseURL        = "https://api.x.ai/v1"
)

// Request is one completion call
type Request struct {
	Prompt      string
	System      string
	MaxTokens int
	// Temperature is nil for the default; an explicit 0 asks for greedy output
	Temperature *float32
}

// Temperature returns t as a Request.Temperature value
func Temperature(t float32) *float32 {
	return &t
}

// Completion is a provider's free-text answer
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}

// Agent is a single external completion provider
type Agent interface {
	Provider() string
	Model() string
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Settings configures one provider
type Settings struct {
	Provider string
	Enabled  bool
	APIKey   string
	Model    string
	BaseURL  string
}

// Usable reports whether the agent may be called. A disabled or
// credential-less agent is never contacted.
func (s Settings) Usable() bool {
	return s.Enabled && s.APIKey != ""
}

// ModelOrDefault returns the configured model or the provider default
func (s Settings) ModelOrDefault() string {
	if s.Model != "" {
		return s.Model
	}
	return DefaultModel(s.Provider)
}

func normalizeRequest(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature == nil {
		req.Temperature = Temperature(DefaultTemperature)
	}
	return req
}
