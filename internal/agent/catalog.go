package agent

// ModelInfo describes one selectable model of a provider
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Recommended bool   `json:"recommended,omitempty"`
}

var catalog = map[string][]ModelInfo{
	ProviderClaude: {
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Recommended: true},
		{ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet"},
		{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku"},
	},
	ProviderOpenAI: {
		{ID: "gpt-4o", Name: "GPT-4o", Recommended: true},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo"},
	},
	ProviderGemini: {
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Recommended: true},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro"},
		{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
	},
	ProviderGrok: {
		{ID: "grok-beta", Name: "Grok Beta", Recommended: true},
		{ID: "grok-2", Name: "Grok 2"},
	},
}

// Catalog returns the selectable models of every provider
func Catalog() map[string][]ModelInfo {
	out := make(map[string][]ModelInfo, len(catalog))
	for provider, list := range catalog {
		out[provider] = append([]ModelInfo(nil), list...)
	}
	return out
}

// DefaultModel returns the recommended model of a provider, or "" if unknown
func DefaultModel(provider string) string {
	for _, m := range catalog[provider] {
		if m.Recommended {
			return m.ID
		}
	}
	return ""
}
