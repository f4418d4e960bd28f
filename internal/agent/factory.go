package agent

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Factory builds agents from settings
type Factory interface {
	New(s Settings) (Agent, error)
}

// ClientFactory builds provider agents that share one rate-limited HTTP client
// per provider, so throttling holds across requests.
type ClientFactory struct {
	clients map[string]*http.Client
}

// NewFactory creates a factory with one HTTP client per supported provider
func NewFactory(cfg HTTPClientConfig, logger *logrus.Logger) *ClientFactory {
	clients := make(map[string]*http.Client, len(Providers))
	for _, p := range Providers {
		var entry *logrus.Entry
		if logger != nil {
			entry = logger.WithFields(logrus.Fields{"component": "agent_transport", "provider": p})
		}
		clients[p] = NewHTTPClient(cfg, entry)
	}
	return &ClientFactory{clients: clients}
}

// New returns the adapter for s.Provider
func (f *ClientFactory) New(s Settings) (Agent, error) {
	switch s.Provider {
	case ProviderClaude:
		return NewClaudeAgent(s, f.clients[ProviderClaude])
	case ProviderOpenAI, ProviderGrok:
		return NewOpenAIAgent(s, f.clients[s.Provider])
	case ProviderGemini:
		return NewGeminiAgent(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.Provider)
	}
}
