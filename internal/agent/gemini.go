package agent

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiAgent calls the Google Generative Language API. A client is created
// per call because genai clients hold a connection that must be closed.
type GeminiAgent struct {
	apiKey  string
	baseURL string
	model   string
}

// NewGeminiAgent creates a Gemini agent
func NewGeminiAgent(s Settings) (*GeminiAgent, error) {
	if s.APIKey == "" {
		return nil, ErrMissingCredentials
	}
	return &GeminiAgent{
		apiKey:  s.APIKey,
		baseURL: s.BaseURL,
		model:   s.ModelOrDefault(),
	}, nil
}

// Provider returns the provider name
func (g *GeminiAgent) Provider() string {
	return ProviderGemini
}

// Model returns the model identifier
func (g *GeminiAgent) Model() string {
	return g.model
}

// Complete generates content and concatenates the text parts of the first candidate
func (g *GeminiAgent) Complete(ctx context.Context, req Request) (*Completion, error) {
	req = normalizeRequest(req)

	opts := []option.ClientOption{option.WithAPIKey(g.apiKey)}
	if g.baseURL != "" {
		opts = append(opts, option.WithEndpoint(g.baseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.SetTemperature(*req.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}

	text := firstCandidateText(resp)
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Completion{
		Text:       text,
		Model:      g.model,
		TokensUsed: tokens,
	}, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
