package agent

import (
	"context"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAgent calls an OpenAI-compatible chat completions API. It serves
// both OpenAI and Grok, which differ only in base URL.
type OpenAIAgent struct {
	client   *openai.Client
	provider string
	model    string
}

// NewOpenAIAgent creates an OpenAI-compatible agent. httpClient may be nil.
func NewOpenAIAgent(s Settings, httpClient *http.Client) (*OpenAIAgent, error) {
	if s.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	config := openai.DefaultConfig(s.APIKey)
	switch {
	case s.BaseURL != "":
		config.BaseURL = s.BaseURL
	case s.Provider == ProviderGrok:
		config.BaseURL = GrokBaseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	provider := s.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	return &OpenAIAgent{
		client:   openai.NewClientWithConfig(config),
		provider: provider,
		model:    s.ModelOrDefault(),
	}, nil
}

// Provider returns the provider name
func (o *OpenAIAgent) Provider() string {
	return o.provider
}

// Model returns the model identifier
func (o *OpenAIAgent) Model() string {
	return o.model
}

// Complete sends a system and user message pair
func (o *OpenAIAgent) Complete(ctx context.Context, req Request) (*Completion, error) {
	req = normalizeRequest(req)

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: openAITemperature(*req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Text:       resp.Choices[0].Message.Content,
		Model:      o.model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// openAITemperature keeps an explicit zero on the wire; the client drops a
// zero float as unset and the API would fall back to 1.0.
func openAITemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
