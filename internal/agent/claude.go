package agent

import (
	"context"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeAgent calls the Anthropic messages API
type ClaudeAgent struct {
	client *anthropic.Client
	model  string
}

// NewClaudeAgent creates a Claude agent. httpClient may be nil.
func NewClaudeAgent(s Settings, httpClient *http.Client) (*ClaudeAgent, error) {
	if s.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	var opts []anthropic.ClientOption
	if s.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(s.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, anthropic.WithHTTPClient(httpClient))
	}

	return &ClaudeAgent{
		client: anthropic.NewClient(s.APIKey, opts...),
		model:  s.ModelOrDefault(),
	}, nil
}

// Provider returns the provider name
func (c *ClaudeAgent) Provider() string {
	return ProviderClaude
}

// Model returns the model identifier
func (c *ClaudeAgent) Model() string {
	return c.model
}

// Complete sends one user message and returns the first text block
func (c *ClaudeAgent) Complete(ctx context.Context, req Request) (*Completion, error) {
	req = normalizeRequest(req)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(c.model),
		System: req.System,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(req.Prompt),
				},
			},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Content) == 0 || resp.Content[0].Text == nil || *resp.Content[0].Text == "" {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Text:       *resp.Content[0].Text,
		Model:      c.model,
		TokensUsed: resp.Usage.OutputTokens,
	}, nil
}
