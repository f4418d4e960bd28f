// Package magi fans a race out to several external agents and reduces their
// free-text answers to a majority-vote consensus pick.
package magi

import (
	"strings"

	"github.com/yourusername/boat-oracle/internal/agent"
)

// SystemName and SystemVersion identify the consensus system in info output
const (
	SystemName        = "MAGI System"
	SystemVersion     = "1.0.0"
	SystemDescription = "Multiple AI Governance Intelligence - multi-agent consensus prediction"
)

// Member is one consensus participant
type Member struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Vendor   string `json:"vendor"`
	Role     string `json:"role"`
}

var members = []Member{
	{Name: "MELCHIOR", Provider: agent.ProviderClaude, Vendor: "Claude (Anthropic)", Role: "analysis as a scientist"},
	{Name: "BALTHASAR", Provider: agent.ProviderOpenAI, Vendor: "ChatGPT (OpenAI)", Role: "intuition as a mother"},
	{Name: "CASPER", Provider: agent.ProviderGemini, Vendor: "Gemini (Google)", Role: "sensibility as a woman"},
	{Name: "RAMIEL", Provider: agent.ProviderGrok, Vendor: "Grok (xAI)", Role: "the angel's point of view"},
}

// Members returns the participants in dispatch order
func Members() []Member {
	return append([]Member(nil), members...)
}

// NameFor returns the member name of a provider, or the upper-cased
// provider for unknown ones.
func NameFor(provider string) string {
	for _, m := range members {
		if m.Provider == provider {
			return m.Name
		}
	}
	return strings.ToUpper(provider)
}
